// Package channel serves the alarm method channel over HTTP with echo.
//
// A call is POST /channels/<channel>/<method> with a JSON object of
// arguments; the reply is {"result": ...}. Unknown methods answer 501.
package channel
