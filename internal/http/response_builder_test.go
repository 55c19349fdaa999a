package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"cashbook/internal/app"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyString("test").
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("unexpected HX-Trigger header")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerTransactionsChanged().
		TriggerFormReset().
		TriggerNotice(app.Notice{Level: app.LevelSuccess, Message: "Transaction added!"}).
		Write(w)

	var got map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &got); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{EventTransactionsChanged, EventFormReset, EventNotification} {
		if _, ok := got[name]; !ok {
			t.Errorf("HX-Trigger missing %q", name)
		}
	}

	var note struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal(got[EventNotification], &note); err != nil {
		t.Fatalf("notification payload: %v", err)
	}
	if note.Type != "success" || note.Message != "Transaction added!" || note.Duration != 4000 {
		t.Errorf("unexpected notification %+v", note)
	}
}

func TestHTMXResponseBuilder_ZeroNoticeIgnored(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().TriggerNotice(app.Notice{}).Write(w)
	if h := w.Header().Get("HX-Trigger"); h != "" {
		t.Errorf("HX-Trigger = %q, want empty", h)
	}
}

func TestHTMXResponseBuilder_HeadersAndHTML(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().
		Header("Cache-Control", "no-store").
		BodyHTML([]byte("<p>ok</p>")).
		Write(w)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("custom header not written")
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		code    int
	}{
		{"bad request", BadRequestError("<bad>"), http.StatusBadRequest},
		{"not found", NotFoundError("<bad>"), http.StatusNotFound},
		{"internal", InternalServerError("<bad>"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("code = %d, want %d", w.Code, tt.code)
			}
			if strings.Contains(w.Body.String(), "<bad>") {
				t.Errorf("message not escaped: %s", w.Body.String())
			}
			if !strings.Contains(w.Body.String(), "&lt;bad&gt;") {
				t.Errorf("escaped message missing: %s", w.Body.String())
			}
		})
	}
}
