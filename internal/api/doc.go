// Package api exposes the student, course and fee services over Connect RPC.
//
// Messages are plain Go structs carried by a JSON codec, so the API works
// with any Connect or HTTP client that speaks application/json:
//
//	curl -H 'Content-Type: application/json' \
//	    -d '{"student_id": 1, "amount": "10000"}' \
//	    http://localhost:8080/studentfees.v1.FeeService/ProcessPayment
//
// Money travels as decimal strings.
package api
