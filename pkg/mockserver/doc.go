// Package mockserver serves the notification HTTP API from an in-memory
// feed. It stands in for the real backend during development and in
// end-to-end tests of the API client and the store collection.
//
// Routes:
//
//	GET    /healthz
//	GET    /notifications
//	POST   /notifications
//	POST   /notifications/seen
//	POST   /notifications/read
//	POST   /notifications/{id}/read
//	POST   /notifications/{id}/unread
//	DELETE /notifications/{id}
//
// Every route but /healthz requires the X-MAGICBELL-API-KEY header when the
// server has a key: a missing key is answered with 401 and a wrong one with
// 403. After each successful write the matching realtime event is handed to
// the configured publisher, so connected clients can follow along.
package mockserver
