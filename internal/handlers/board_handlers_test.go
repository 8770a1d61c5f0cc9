package handlers

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/hospoda/shiftboard/internal/models"
)

func TestTaskEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := createTestUser(t, env.db, "Sefova", models.UserRoleAdmin)
	employee, employeeToken := createTestUser(t, env.db, "Pavel", models.UserRoleEmployee)
	mine := createTestShift(t, env.db, "2025-03-13", employee)
	other := createTestShift(t, env.db, "2025-03-14", nil)

	create := func(title string, shiftID string) string {
		t.Helper()
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/tasks", map[string]any{
			"title":    title,
			"priority": "high",
			"shiftId":  shiftID,
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusCreated)
		return dataMap(t, decodeJSONMap(t, resp))["id"].(string)
	}
	mineTask := create("Doplnit ubrousky", mine.ID.String())
	create("Umýt terasu", other.ID.String())

	t.Run("employee sees only tasks on own shifts", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/tasks", nil, authHeaders(employeeToken))
		assertStatus(t, resp, http.StatusOK)
		list := dataList(t, decodeJSONMap(t, resp))
		if len(list) != 1 || list[0].(map[string]any)["id"] != mineTask {
			t.Fatalf("expected only own task, got %v", list)
		}

		resp = performRequest(t, env.app, http.MethodGet, "/api/tasks", nil, authHeaders(adminToken))
		if list := dataList(t, decodeJSONMap(t, resp)); len(list) != 2 {
			t.Fatalf("expected admin to see 2 tasks, got %d", len(list))
		}
	})

	t.Run("toggle flips status both ways", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodPost, "/api/tasks/"+mineTask+"/toggle", nil, authHeaders(employeeToken))
		assertStatus(t, resp, http.StatusOK)
		data := dataMap(t, decodeJSONMap(t, resp))
		if data["status"] != "completed" || data["completedBy"] != employee.UID.String() {
			t.Fatalf("expected completed task, got %v", data)
		}

		resp = performRequest(t, env.app, http.MethodPost, "/api/tasks/"+mineTask+"/toggle", nil, authHeaders(employeeToken))
		assertStatus(t, resp, http.StatusOK)
		data = dataMap(t, decodeJSONMap(t, resp))
		if data["status"] != "pending" || data["completedAt"] != nil {
			t.Fatalf("expected pending task, got %v", data)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/tasks?status=done", nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("employee cannot edit or delete", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/tasks/"+mineTask, map[string]any{
			"title": "Jinak",
		}, authHeaders(employeeToken))
		assertStatus(t, resp, http.StatusForbidden)

		resp = performRequest(t, env.app, http.MethodDelete, "/api/tasks/"+mineTask, nil, authHeaders(employeeToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("admin edits and deletes", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/tasks/"+mineTask, map[string]any{
			"title": "Doplnit ubrousky a sůl",
		}, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)

		resp = performRequest(t, env.app, http.MethodDelete, "/api/tasks/"+mineTask, nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)

		resp = performRequest(t, env.app, http.MethodPost, "/api/tasks/"+mineTask+"/toggle", nil, authHeaders(employeeToken))
		assertStatus(t, resp, http.StatusNotFound)
	})
}

func TestAnnouncementEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := createTestUser(t, env.db, "Sefova", models.UserRoleAdmin)
	_, employeeToken := createTestUser(t, env.db, "Pavel", models.UserRoleEmployee)

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/announcements", map[string]any{
		"title":    "Inventura",
		"content":  "V pondělí zavřeno.",
		"priority": "urgent",
	}, authHeaders(adminToken))
	assertStatus(t, resp, http.StatusCreated)
	id := dataMap(t, decodeJSONMap(t, resp))["id"].(string)

	resp = performJSONRequest(t, env.app, http.MethodPost, "/api/announcements", map[string]any{
		"title":   "Nepovolené",
		"content": "x",
	}, authHeaders(employeeToken))
	assertStatus(t, resp, http.StatusForbidden)

	resp = performRequest(t, env.app, http.MethodGet, "/api/announcements", nil, authHeaders(employeeToken))
	assertStatus(t, resp, http.StatusOK)
	if list := dataList(t, decodeJSONMap(t, resp)); len(list) != 1 {
		t.Fatalf("expected 1 announcement, got %d", len(list))
	}

	resp = performJSONRequest(t, env.app, http.MethodPut, "/api/announcements/"+id, map[string]any{
		"isActive": false,
	}, authHeaders(adminToken))
	assertStatus(t, resp, http.StatusOK)

	resp = performRequest(t, env.app, http.MethodGet, "/api/announcements", nil, authHeaders(employeeToken))
	if list := dataList(t, decodeJSONMap(t, resp)); len(list) != 0 {
		t.Fatalf("expected inactive announcement to be hidden, got %v", list)
	}

	resp = performRequest(t, env.app, http.MethodGet, "/api/announcements?all=true", nil, authHeaders(adminToken))
	if list := dataList(t, decodeJSONMap(t, resp)); len(list) != 1 {
		t.Fatalf("expected admin to see inactive announcement, got %v", list)
	}

	resp = performRequest(t, env.app, http.MethodDelete, "/api/announcements/"+id, nil, authHeaders(adminToken))
	assertStatus(t, resp, http.StatusOK)
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed encoding png: %v", err)
	}
	return buf.Bytes()
}

func multipartPhoto(t *testing.T, data []byte, contentType, caption string) (io.Reader, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="photo"; filename="fotka.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed creating multipart part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed writing multipart part: %v", err)
	}
	if err := writer.WriteField("caption", caption); err != nil {
		t.Fatalf("failed writing caption: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestGalleryEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	owner, ownerToken := createTestUser(t, env.db, "Pavel", models.UserRoleEmployee)
	_, otherToken := createTestUser(t, env.db, "Olga", models.UserRoleEmployee)

	upload := func(token string, data []byte, contentType string) *http.Response {
		t.Helper()
		body, formType := multipartPhoto(t, data, contentType, "Zahrádka")
		headers := authHeaders(token)
		headers["Content-Type"] = formType
		return performRequest(t, env.app, http.MethodPost, "/api/gallery", body, headers)
	}

	resp := upload(ownerToken, testPNG(t, 64, 48), "image/png")
	assertStatus(t, resp, http.StatusCreated)
	photo := dataMap(t, decodeJSONMap(t, resp))
	photoID := photo["id"].(string)
	if photo["caption"] != "Zahrádka" || photo["uploadedBy"] != owner.UID.String() {
		t.Fatalf("unexpected photo %v", photo)
	}
	if env.store.Len() != 1 {
		t.Fatalf("expected one stored blob, got %d", env.store.Len())
	}

	t.Run("non-images are rejected", func(t *testing.T) {
		resp := upload(ownerToken, []byte("%PDF-1.4"), "application/pdf")
		assertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("missing file", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodPost, "/api/gallery", nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusBadRequest)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "photo is required")
	})

	t.Run("likes are a set", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			resp := performRequest(t, env.app, http.MethodPost, "/api/gallery/"+photoID+"/like", nil, authHeaders(otherToken))
			assertStatus(t, resp, http.StatusOK)
			data := dataMap(t, decodeJSONMap(t, resp))
			if likes := data["likes"].([]any); len(likes) != 1 || data["liked"] != true {
				t.Fatalf("expected a single like, got %v", data)
			}
		}

		resp := performRequest(t, env.app, http.MethodPost, "/api/gallery/"+photoID+"/like/toggle", nil, authHeaders(otherToken))
		assertStatus(t, resp, http.StatusOK)
		if data := dataMap(t, decodeJSONMap(t, resp)); data["liked"] != false {
			t.Fatalf("expected toggle to unlike, got %v", data)
		}

		resp = performRequest(t, env.app, http.MethodDelete, "/api/gallery/"+photoID+"/like", nil, authHeaders(otherToken))
		assertStatus(t, resp, http.StatusOK)
	})

	t.Run("list", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/gallery", nil, authHeaders(otherToken))
		assertStatus(t, resp, http.StatusOK)
		list := dataList(t, decodeJSONMap(t, resp))
		if len(list) != 1 {
			t.Fatalf("expected 1 photo, got %d", len(list))
		}
		if url, _ := list[0].(map[string]any)["imageUrl"].(string); url == "" {
			t.Fatal("expected a signed image url")
		}
	})

	t.Run("only the owner deletes", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/gallery/"+photoID, nil, authHeaders(otherToken))
		assertStatus(t, resp, http.StatusForbidden)

		resp = performRequest(t, env.app, http.MethodDelete, "/api/gallery/"+photoID, nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)
		if env.store.Len() != 0 {
			t.Fatalf("expected blob to be removed, got %d", env.store.Len())
		}
	})
}

func TestDashboardEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	employee, token := createTestUser(t, env.db, "Pavel", models.UserRoleEmployee)
	createTestShift(t, env.db, "2025-03-13", employee)
	createTestShift(t, env.db, "2025-03-14", nil)

	resp := performRequest(t, env.app, http.MethodGet, "/api/dashboard", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	data := dataMap(t, decodeJSONMap(t, resp))
	if data["displayName"] != "Pavel" {
		t.Fatalf("expected display name, got %v", data["displayName"])
	}
	stats := data["stats"].(map[string]any)
	if stats["myShifts"] != float64(1) || stats["openShifts"] != float64(1) {
		t.Fatalf("unexpected stats %v", stats)
	}
}

func TestAuditEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := createTestUser(t, env.db, "Sefova", models.UserRoleAdmin)
	_, employeeToken := createTestUser(t, env.db, "Pavel", models.UserRoleEmployee)
	shift := createTestShift(t, env.db, "2025-03-20", nil)

	resp := performRequest(t, env.app, http.MethodPost, "/api/shifts/"+shift.ID.String()+"/claim", nil, authHeaders(employeeToken))
	assertStatus(t, resp, http.StatusOK)

	// audit rows are written asynchronously
	var body map[string]any
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp = performRequest(t, env.app, http.MethodGet, "/api/audit?action=shift.claim", nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		body = decodeJSONMap(t, resp)
		if len(dataList(t, body)) > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	list := dataList(t, body)
	if len(list) != 1 {
		t.Fatalf("expected 1 claim entry, got %d", len(list))
	}
	entry := list[0].(map[string]any)
	if entry["summary"] != "Pavel převzal(a) směnu 2025-03-20" {
		t.Fatalf("unexpected summary %v", entry["summary"])
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["total"] != float64(1) || pagination["page"] != float64(1) {
		t.Fatalf("unexpected pagination %v", pagination)
	}

	t.Run("csv export", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/audit/export?action=shift.claim", nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)
		raw, _ := io.ReadAll(resp.Body)
		lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
		if len(lines) != 2 || !strings.HasPrefix(lines[0], "Timestamp,Action") {
			t.Fatalf("unexpected csv %q", string(raw))
		}
		if !strings.Contains(lines[1], fmt.Sprintf("shift.claim,shift,%s", shift.ID)) {
			t.Fatalf("unexpected csv row %q", lines[1])
		}
	})

	t.Run("employees are refused", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/audit", nil, authHeaders(employeeToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("invalid filter", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/audit?userId=nope", nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusBadRequest)
	})
}
