package session

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCookieRoundTrip(t *testing.T) {
	token, ok := ExtractFromCookie(MakeSessionCookie("abc123", DefaultMaxAge))
	assert.True(t, ok)
	assert.Equal(t, "abc123", token)
}

func TestMakeSessionCookieFormat(t *testing.T) {
	assert.Equal(t, "token=abc; HttpOnly; Path=/; Max-Age=2592000; SameSite=Strict", MakeSessionCookie("abc", 0))
	assert.Equal(t, "token=abc; HttpOnly; Path=/; Max-Age=60; SameSite=Strict", MakeSessionCookie("abc", 60))
	assert.Equal(t, "token=; HttpOnly; Path=/; Max-Age=0; SameSite=Strict", MakeClearCookie())
}

func TestExtractFromCookie(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "empty", header: "", ok: false},
		{name: "single", header: "token=xyz", want: "xyz", ok: true},
		{name: "surrounded", header: "lang=zh;  token=xyz ; theme=dark", want: "xyz", ok: true},
		{name: "no decoding", header: "token=a%20b", want: "a%20b", ok: true},
		{name: "other cookies only", header: "lang=zh; theme=dark", ok: false},
		{name: "cleared", header: "token=", ok: false},
		{name: "similar name", header: "xtoken=nope", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractFromCookie(tc.header)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractFromQuery(t *testing.T) {
	token, ok := ExtractFromQuery(url.Values{"token": {"q1"}, "x": {"1"}})
	assert.True(t, ok)
	assert.Equal(t, "q1", token)

	_, ok = ExtractFromQuery(url.Values{})
	assert.False(t, ok)
}

func TestFromRequestPrefersQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/configs?token=fromquery", nil)
	r.Header.Set("Cookie", "token=fromcookie")
	token, ok := FromRequest(r)
	assert.True(t, ok)
	assert.Equal(t, "fromquery", token)

	r = httptest.NewRequest("GET", "/configs", nil)
	r.Header.Set("Cookie", "token=fromcookie")
	token, ok = FromRequest(r)
	assert.True(t, ok)
	assert.Equal(t, "fromcookie", token)
}
