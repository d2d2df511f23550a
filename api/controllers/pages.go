package controllers

import (
	"fmt"
	"net/http"
)

// LoginPage serves the public login shell. The admin pages are rendered by
// the frontend bundle; these handlers only anchor the route table and the
// session gate.
func LoginPage() http.HandlerFunc {
	return pageShell("Sign In", "Sign in with your staff account to manage orders.")
}

// DashboardPage serves the admin dashboard shell.
func DashboardPage() http.HandlerFunc {
	return pageShell("Dashboard", "Order volume, pending pickups, and slot distribution at a glance.")
}

// OrdersPage serves the order management shell.
func OrdersPage() http.HandlerFunc {
	return pageShell("Orders", "Search, filter, and update pickup orders.")
}

// EmailsPage serves the customer email roll-up shell.
func EmailsPage() http.HandlerFunc {
	return pageShell("Customer Emails", "Aggregated customer contacts from order history.")
}

func pageShell(title, blurb string) http.HandlerFunc {
	const tmpl = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Petalboard - %s</title></head>
<body><main><h1>%s</h1><p>%s</p></main></body>
</html>
`
	body := []byte(fmt.Sprintf(tmpl, title, title, blurb))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	}
}
