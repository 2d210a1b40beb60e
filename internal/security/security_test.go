package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestVisitorToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := SignVisitorToken(secret, "visitor-1", time.Hour)
	if err != nil {
		t.Fatalf("SignVisitorToken() error = %v", err)
	}

	uid, err := ParseVisitorToken(secret, token)
	if err != nil {
		t.Fatalf("ParseVisitorToken() error = %v", err)
	}
	if uid != "visitor-1" {
		t.Errorf("uid = %q, want visitor-1", uid)
	}

	tests := []struct {
		name   string
		secret []byte
		token  string
	}{
		{"wrong secret", []byte("other"), token},
		{"garbage", secret, "not-a-token"},
		{"tampered", secret, token + "x"},
		{"empty", secret, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseVisitorToken(tt.secret, tt.token); err != ErrInvalidToken {
				t.Errorf("ParseVisitorToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestVisitorTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := SignVisitorToken(secret, "visitor-1", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseVisitorToken(secret, token); err != ErrInvalidToken {
		t.Errorf("expired token accepted: %v", err)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}

	if !CheckPassword(hash, "hunter2") {
		t.Error("matching password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
	if CheckPassword("", "") {
		t.Error("empty hash must never match")
	}
}

func TestCreateVisitorCookie(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/register/abc", nil)
	c := CreateVisitorCookie(r, "SYNOD_SESSION", "value", 24*time.Hour)

	if c.MaxAge != 86400 {
		t.Errorf("MaxAge = %d, want 86400", c.MaxAge)
	}
	if !c.HttpOnly || c.Secure {
		t.Errorf("HttpOnly = %v, Secure = %v", c.HttpOnly, c.Secure)
	}

	r.Header.Set("X-Forwarded-Proto", "https")
	if !CreateVisitorCookie(r, "SYNOD_SESSION", "value", time.Hour).Secure {
		t.Error("cookie behind TLS proxy should be secure")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Now()
	rl := &RateLimiter{clients: make(map[string]*client), rate: 2, window: time.Minute, now: func() time.Time { return now }}

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request in window should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own budget")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("budget should refill after the window")
	}

	now = now.Add(3 * time.Minute)
	rl.prune()
	if len(rl.clients) != 0 {
		t.Errorf("idle clients not pruned: %d left", len(rl.clients))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.2.3.4:5678", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "1.2.3.4:5678", "10.0.0.9"},
		{"remote addr", nil, "1.2.3.4:5678", "1.2.3.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
