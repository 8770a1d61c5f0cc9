package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestNewClient(t *testing.T) {
	t.Run("appends api prefix", func(t *testing.T) {
		client := NewClient("http://localhost:8080/", "test-token")
		if client.BaseURL != "http://localhost:8080/api" {
			t.Errorf("expected BaseURL 'http://localhost:8080/api', got %s", client.BaseURL)
		}
		if client.Token != "test-token" {
			t.Errorf("expected Token 'test-token', got %s", client.Token)
		}
	})

	t.Run("removes trailing slashes", func(t *testing.T) {
		client := NewClient("http://example.com///", "")
		if client.BaseURL != "http://example.com/api" {
			t.Errorf("expected BaseURL 'http://example.com/api', got %s", client.BaseURL)
		}
	})

	t.Run("sets a timeout", func(t *testing.T) {
		client := NewClient("http://localhost:8080", "")
		if client.HTTPClient == nil || client.HTTPClient.Timeout == 0 {
			t.Error("expected HTTPClient with a timeout")
		}
	})
}

func TestAPIError(t *testing.T) {
	plain := &APIError{Status: 404, Message: "shift not found"}
	if plain.Error() != "api: 404: shift not found" {
		t.Errorf("unexpected message %q", plain.Error())
	}

	coded := &APIError{Status: 409, Code: "auth/email-already-in-use", Message: "Email je již registrován"}
	if coded.Error() != "api: 409 auth/email-already-in-use: Email je již registrován" {
		t.Errorf("unexpected message %q", coded.Error())
	}
}

func TestClientGet(t *testing.T) {
	t.Run("sends auth header and query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET request, got %s", r.Method)
			}
			if r.URL.Path != "/api/shifts" {
				t.Errorf("expected /api/shifts, got %s", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer test-token" {
				t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
			}
			if r.URL.Query().Get("view") != "open" {
				t.Errorf("expected view=open, got %s", r.URL.Query().Get("view"))
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    []map[string]interface{}{{"id": "s1", "date": "2025-03-20", "status": "open"}},
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-token")
		var resp Response[[]Shift]
		if err := client.Get("/shifts", map[string][]string{"view": {"open"}}, &resp); err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if len(resp.Data) != 1 || resp.Data[0].Date != "2025-03-20" {
			t.Errorf("unexpected data %+v", resp.Data)
		}
	})

	t.Run("returns APIError with code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"code":    "auth/invalid-credential",
				"error":   "Nesprávný email nebo heslo",
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		err := client.Get("/auth/me", nil, nil)

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %T", err)
		}
		if apiErr.Status != http.StatusUnauthorized || apiErr.Code != "auth/invalid-credential" {
			t.Errorf("unexpected error %+v", apiErr)
		}
	})

	t.Run("falls back to raw body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}))
		defer server.Close()

		err := NewClient(server.URL, "").Get("/shifts", nil, nil)
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "bad gateway" {
			t.Fatalf("unexpected error %v", err)
		}
	})
}

func TestClientPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected Content-Type %q", r.Header.Get("Content-Type"))
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "pavel@hospoda.cz" {
			t.Errorf("unexpected body %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"token": "jwt", "user": map[string]string{"email": "pavel@hospoda.cz", "role": "employee"}},
		})
	}))
	defer server.Close()

	var resp Response[LoginResponse]
	err := NewClient(server.URL, "").Post("/auth/login", map[string]string{"email": "pavel@hospoda.cz", "password": "heslo123"}, &resp)
	if err != nil {
		t.Fatalf("Post() returned error: %v", err)
	}
	if resp.Data.Token != "jwt" || resp.Data.User.Role != "employee" {
		t.Errorf("unexpected response %+v", resp.Data)
	}
}

func TestClientDeleteSendsNoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "" {
			t.Errorf("expected no Content-Type, got %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer server.Close()

	if err := NewClient(server.URL, "tok").Delete("/gallery/p1/like", nil); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
}

func TestClientGetRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, "<html>rozpis</html>")
	}))
	defer server.Close()

	body, err := NewClient(server.URL, "").GetRaw("/shifts/print", map[string][]string{"year": {"2025"}})
	if err != nil {
		t.Fatalf("GetRaw() returned error: %v", err)
	}
	if string(body) != "<html>rozpis</html>" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestClientUpload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terasa.png")
	if err := os.WriteFile(path, []byte("fake-png"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if r.FormValue("caption") != "Nová terasa" {
			t.Errorf("unexpected caption %q", r.FormValue("caption"))
		}
		file, header, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("missing photo part: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "terasa.png" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		if header.Header.Get("Content-Type") != "image/png" {
			t.Errorf("unexpected part Content-Type %q", header.Header.Get("Content-Type"))
		}
		data, _ := io.ReadAll(file)
		if string(data) != "fake-png" {
			t.Errorf("unexpected content %q", data)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": map[string]string{"id": "p1"}})
	}))
	defer server.Close()

	var resp Response[Photo]
	err := NewClient(server.URL, "tok").Upload("/gallery", "photo", path, map[string]string{"caption": "Nová terasa"}, &resp)
	if err != nil {
		t.Fatalf("Upload() returned error: %v", err)
	}
	if resp.Data.ID != "p1" {
		t.Errorf("unexpected photo %+v", resp.Data)
	}
}

func TestClientUploadMissingFile(t *testing.T) {
	err := NewClient("http://localhost:1", "").Upload("/gallery", "photo", filepath.Join(t.TempDir(), "missing.jpg"), nil, nil)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
