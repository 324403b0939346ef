package web

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	auditDomain "stella/internal/domain/audit"
	noticeDomain "stella/internal/domain/notice"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts notice markdown to HTML. On a conversion error the
// raw text is returned so the notice is still readable.
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return md
	}
	return buf.String()
}

type noticeView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html"`
	Status      string `json:"status"`
	Pinned      bool   `json:"pinned"`
	CreatedAt   string `json:"created_at"`
	PublishedAt string `json:"published_at,omitempty"`
}

func toNoticeView(n noticeDomain.Notice) noticeView {
	v := noticeView{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		ContentHTML: renderMarkdown(n.Content),
		Status:      n.Status,
		Pinned:      n.Pinned,
		CreatedAt:   n.CreatedAt.Format("2006-01-02"),
	}
	if !n.PublishedAt.IsZero() {
		v.PublishedAt = n.PublishedAt.Format("2006-01-02")
	}
	return v
}

// handleNotices handles GET (list) and POST (create) for /api/notices.
// Members only see published notices; staff see drafts too.
func handleNotices(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		var list []noticeDomain.Notice
		var err error
		if sess.Role == "user" {
			list, err = stores.NoticeStore.ListPublished(r.Context())
		} else {
			list, err = stores.NoticeStore.List(r.Context())
		}
		if err != nil {
			internalError(w, err)
			return
		}
		views := []noticeView{}
		for _, n := range list {
			views = append(views, toNoticeView(n))
		}
		writeJSON(w, http.StatusOK, views)

	case "POST":
		if _, ok := requireStaff(w, r); !ok {
			return
		}
		var body struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			Pinned  bool   `json:"pinned"`
			Publish bool   `json:"publish"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		n := noticeDomain.Notice{
			ID:        generateID(),
			Title:     body.Title,
			Content:   body.Content,
			Status:    noticeDomain.StatusDraft,
			CreatedBy: sess.AccountID,
			Pinned:    body.Pinned,
			CreatedAt: timeNow(),
		}
		if body.Publish {
			// A fresh draft always accepts publication.
			_ = n.Publish(timeNow())
		}
		if err := n.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := stores.NoticeStore.Save(r.Context(), n); err != nil {
			internalError(w, err)
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySystem, auditDomain.ActionCreate).
			WithResource("notice", n.ID))
		writeJSON(w, http.StatusOK, toNoticeView(n))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleNoticeByID dispatches /api/notices/{id}, /api/notices/{id}/publish
// and deletion.
func handleNoticeByID(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/notices/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "publish" {
		if _, ok := requireStaff(w, r); !ok {
			return
		}
		if r.Method != "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		n, err := stores.NoticeStore.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, "notice not found")
			return
		}
		if err := n.Publish(timeNow()); err != nil {
			if errors.Is(err, noticeDomain.ErrAlreadyPublished) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := stores.NoticeStore.Save(r.Context(), n); err != nil {
			internalError(w, err)
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySystem, auditDomain.ActionUpdate).
			WithResource("notice", id).
			WithDescription("published notice"))
		writeJSON(w, http.StatusOK, toNoticeView(n))
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case "GET":
		n, err := stores.NoticeStore.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, "notice not found")
			return
		}
		if sess.Role == "user" && n.Status != noticeDomain.StatusPublished {
			writeError(w, http.StatusNotFound, "notice not found")
			return
		}
		writeJSON(w, http.StatusOK, toNoticeView(n))

	case "DELETE":
		if _, ok := requireStaff(w, r); !ok {
			return
		}
		if err := stores.NoticeStore.Delete(r.Context(), id); err != nil {
			writeError(w, http.StatusNotFound, "notice not found")
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySystem, auditDomain.ActionDelete).
			WithResource("notice", id))
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
