package web

import "net/http"

// registerRoutes wires every API endpoint onto the mux. Handlers that take a
// path parameter register a trailing-slash prefix and parse the rest
// themselves.
func registerRoutes(mux *http.ServeMux) {
	// identity
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/me", handleMe)
	mux.HandleFunc("/api/register", handleRegister)

	// coins
	mux.HandleFunc("/api/coins/balance", handleCoinBalance)
	mux.HandleFunc("/api/coins/transactions", handleCoinTransactions)
	mux.HandleFunc("/api/coins/stats", handleCoinStats)
	mux.HandleFunc("/api/admin/coins/grant", handleAdminGrantCoins)
	mux.HandleFunc("/api/admin/coins/extend", handleAdminExtendCoins)

	// reservations and availability
	mux.HandleFunc("/api/reservations", handleReservations)
	mux.HandleFunc("/api/reservations/", handleReservationByID)
	mux.HandleFunc("/api/admin/blocks", handleAdminBlocks)
	mux.HandleFunc("/api/mentors/available", handleAvailability("mentor"))
	mux.HandleFunc("/api/trainers/available", handleAvailability("trainer"))

	// check-in
	mux.HandleFunc("/api/checkin", handleCheckIn)
	mux.HandleFunc("/api/checkin/code", handleCheckInCode)
	mux.HandleFunc("/api/checkin/verify", handleCheckInVerify)
	mux.HandleFunc("/api/checkin/history", handleCheckInHistory)

	// exchange
	mux.HandleFunc("/api/exchange/items", handleExchangeItems)
	mux.HandleFunc("/api/exchange/requests", handleExchangeRequests)
	mux.HandleFunc("/api/admin/exchange/items", handleAdminExchangeItems)
	mux.HandleFunc("/api/admin/exchange/requests/", handleAdminExchangeDecide)

	// fitest and training records
	mux.HandleFunc("/api/fitest", handleFitest)
	mux.HandleFunc("/api/training-records", handleTrainingRecords)

	// notices
	mux.HandleFunc("/api/notices", handleNotices)
	mux.HandleFunc("/api/notices/", handleNoticeByID)

	// admin settings and staffing
	mux.HandleFunc("/api/admin/settings/hours", handleAdminHours)
	mux.HandleFunc("/api/admin/settings/closures", handleAdminClosures)
	mux.HandleFunc("/api/admin/settings/system", handleAdminSystemSettings)
	mux.HandleFunc("/api/admin/mentors/tier", handleAdminMentorTier)
	mux.HandleFunc("/api/admin/tiers", handleAdminTiers)
	mux.HandleFunc("/api/admin/staff", handleAdminStaff)
	mux.HandleFunc("/api/admin/shifts", handleAdminShifts)

	// operations
	mux.HandleFunc("/api/line/webhook", handleLineWebhook)
	mux.HandleFunc("/api/admin/audit", handleAdminAudit)
	mux.HandleFunc("/api/admin/outbox", handleAdminOutbox)
	mux.HandleFunc("/api/admin/outbox/", handleAdminOutbox)
	mux.HandleFunc("/api/admin/perf", handleAdminPerf)
}
