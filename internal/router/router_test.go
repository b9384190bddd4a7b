package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/report"
	"vet-clinic/internal/router"
)

type fakeAuth struct{ signOuts int }

func (f *fakeAuth) SignIn(ctx context.Context, login, password string) (auth.Identity, error) {
	if login == "admin@clinic.test" && password == "secret" {
		return auth.Identity{UserID: "u-1", Email: login, AccessToken: "tok"}, nil
	}
	if login == "down@clinic.test" {
		return auth.Identity{}, errors.New("provider unreachable")
	}
	return auth.Identity{}, auth.ErrInvalidCredentials
}

func (f *fakeAuth) SignOut(ctx context.Context, id auth.Identity) error {
	f.signOuts++
	return nil
}

type fakeRasterizer struct{}

func (fakeRasterizer) PDF(ctx context.Context, html []byte, opts report.PageOptions) ([]byte, error) {
	return append([]byte("%PDF-1.7\n"), html...), nil
}

func newServer(t *testing.T, a auth.Provider) (*httptest.Server, *http.Client) {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Auth:           a,
		Rasterizer:     fakeRasterizer{},
		ReportLocation: time.UTC,
		SessionTTL:     24 * time.Hour,
	}))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return ts, &http.Client{Jar: jar}
}

func TestHTTP_AdminRequiresSession(t *testing.T) {
	ts, c := newServer(t, &fakeAuth{})

	for _, path := range []string{"/api/admin/stats", "/api/admin/clients", "/api/admin/export", "/api/admin/session"} {
		st, body, _ := doReq(t, c, ts.URL, "GET", path, nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, st)
		}
		if !strings.Contains(string(body), "Неавторизованный доступ") {
			t.Fatalf("%s: unexpected body %s", path, body)
		}
	}
}

func TestHTTP_LoginStatsExportLogout(t *testing.T) {
	fa := &fakeAuth{}
	ts, c := newServer(t, fa)

	// 1) Clientes desde el formulario público
	for _, p := range []map[string]any{
		{"firstName": "Анна", "lastName": "И", "petType": "собака"},
		{"firstName": "Олег", "lastName": "П", "petType": "кошка"},
		{"firstName": "Ян", "lastName": "С", "petType": ""},
	} {
		st, body, _ := doReq(t, c, ts.URL, "POST", "/api/clients", p)
		if st != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", st, body)
		}
	}

	// 2) Login con password incorrecto
	{
		st, body, _ := doReq(t, c, ts.URL, "POST", "/api/admin/login", map[string]any{"login": "admin@clinic.test", "password": "bad"})
		if st != http.StatusUnauthorized || !strings.Contains(string(body), "Неверный логин или пароль") {
			t.Fatalf("expected 401 invalid credentials, got %d body=%s", st, body)
		}
	}

	// 3) Login ok => cookie HttpOnly
	{
		st, body, hdr := doReq(t, c, ts.URL, "POST", "/api/admin/login", map[string]any{"login": "admin@clinic.test", "password": "secret"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 login, got %d body=%s", st, body)
		}
		var resp struct {
			Success bool `json:"success"`
			User    struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"user"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.Success || resp.User.ID != "u-1" || strings.Contains(string(body), "tok") {
			t.Fatalf("unexpected login body %s", body)
		}
		if sc := hdr.Get("Set-Cookie"); !strings.Contains(sc, "HttpOnly") || !strings.Contains(sc, "Max-Age=86400") {
			t.Fatalf("unexpected cookie %q", sc)
		}
	}

	// 4) Stats
	{
		st, body, _ := doReq(t, c, ts.URL, "GET", "/api/admin/stats", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 stats, got %d", st)
		}
		var stats struct {
			TotalClients int            `json:"totalClients"`
			PetTypeStats map[string]int `json:"petTypeStats"`
			LastUpdated  string         `json:"lastUpdated"`
		}
		_ = json.Unmarshal(body, &stats)
		if stats.TotalClients != 3 || len(stats.PetTypeStats) != 2 || stats.PetTypeStats["собака"] != 1 {
			t.Fatalf("unexpected stats %s", body)
		}
		if _, err := time.Parse(time.RFC3339, stats.LastUpdated); err != nil {
			t.Fatalf("lastUpdated: %v", err)
		}
	}

	// 5) Clientes admin: más nuevos primero
	{
		st, body, _ := doReq(t, c, ts.URL, "GET", "/api/admin/clients", nil)
		var list []struct {
			FirstName string  `json:"first_name"`
			PetType   *string `json:"pet_type"`
		}
		_ = json.Unmarshal(body, &list)
		if st != http.StatusOK || len(list) != 3 || list[0].FirstName != "Ян" || list[0].PetType != nil {
			t.Fatalf("unexpected admin clients %d %s", st, body)
		}
	}

	// 6) Export
	{
		st, body, hdr := doReq(t, c, ts.URL, "GET", "/api/admin/export", nil)
		if st != http.StatusOK || hdr.Get("Content-Type") != "application/pdf" {
			t.Fatalf("unexpected export %d %v", st, hdr)
		}
		if cd := hdr.Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename=clients_") || !strings.HasSuffix(cd, ".pdf") {
			t.Fatalf("unexpected disposition %q", cd)
		}
		if !bytes.HasPrefix(body, []byte("%PDF")) || bytes.Count(body, []byte(`class="client-row"`)) != 3 {
			t.Fatalf("unexpected pdf body")
		}
	}

	// 7) Logout => sesión destruida
	{
		st, _, _ := doReq(t, c, ts.URL, "POST", "/api/admin/logout", nil)
		if st != http.StatusOK || fa.signOuts != 1 {
			t.Fatalf("expected 200 logout with provider sign-out, got %d (%d)", st, fa.signOuts)
		}
		st, _, _ = doReq(t, c, ts.URL, "GET", "/api/admin/stats", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 after logout, got %d", st)
		}
	}
}

func TestHTTP_LoginProviderFailureIs500(t *testing.T) {
	ts, c := newServer(t, &fakeAuth{})
	st, body, _ := doReq(t, c, ts.URL, "POST", "/api/admin/login", map[string]any{"login": "down@clinic.test", "password": "x"})
	if st != http.StatusInternalServerError || strings.Contains(string(body), "Неверный логин") {
		t.Fatalf("expected 500 distinct from invalid credentials, got %d %s", st, body)
	}
}

func TestHTTP_LogoutWithoutSession(t *testing.T) {
	ts, c := newServer(t, nil)
	st, body, _ := doReq(t, c, ts.URL, "POST", "/api/admin/logout", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"success":true`) {
		t.Fatalf("expected 200 success, got %d %s", st, body)
	}
}

func TestHTTP_CreateClient_Validation(t *testing.T) {
	ts, c := newServer(t, nil)

	st, body, _ := doReq(t, c, ts.URL, "POST", "/api/clients", map[string]any{"firstName": "Анна", "lastName": "  "})
	if st != http.StatusBadRequest || !strings.Contains(string(body), "Имя и фамилия обязательны") {
		t.Fatalf("expected 400, got %d %s", st, body)
	}

	st, body, _ = doReq(t, c, ts.URL, "GET", "/api/clients/stats", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"totalClients":0`) {
		t.Fatalf("rejected create must not persist: %d %s", st, body)
	}
}

func TestHTTP_Health(t *testing.T) {
	ts, c := newServer(t, nil)
	st, body, _ := doReq(t, c, ts.URL, "GET", "/health", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health %d %s", st, body)
	}
}

func doReq(t *testing.T, c *http.Client, baseURL, method, path string, body any) (int, []byte, http.Header) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody, res.Header
}
