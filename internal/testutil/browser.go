package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"time"
)

// Browser carries cookies from one response to the next request the way a
// browser does: a Set-Cookie replaces the earlier value and an expired
// cookie is dropped.
type Browser struct {
	cookies map[string]*http.Cookie
}

// NewBrowser returns a Browser with no cookies.
func NewBrowser() *Browser {
	return &Browser{cookies: map[string]*http.Cookie{}}
}

// SetCookie stores c as if a response had set it.
func (b *Browser) SetCookie(c *http.Cookie) {
	if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
		delete(b.cookies, c.Name)
		return
	}
	b.cookies[c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
}

// Keep applies every Set-Cookie of res.
func (b *Browser) Keep(res *http.Response) {
	for _, c := range res.Cookies() {
		b.SetCookie(c)
	}
}

// Cookie returns the stored cookie, or nil.
func (b *Browser) Cookie(name string) *http.Cookie {
	return b.cookies[name]
}

// Request builds a request carrying the stored cookies.
func (b *Browser) Request(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	return req
}

// Do serves req on h and keeps the cookies the response sets.
func (b *Browser) Do(h http.Handler, req *http.Request) *ResponseRecorder {
	rec := NewRecorder()
	h.ServeHTTP(rec, req)
	b.Keep(rec.Result())
	return rec
}
