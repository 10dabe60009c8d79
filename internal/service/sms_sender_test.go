package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTwilioSMSSenderPostsForm(t *testing.T) {
	var gotPath, gotUser, gotPass, gotTo, gotFrom, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotTo, gotFrom, gotBody = r.PostForm.Get("To"), r.PostForm.Get("From"), r.PostForm.Get("Body")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"sid":"SM123","status":"queued"}`)
	}))
	defer srv.Close()

	sender := NewTwilioSMSSender(TwilioConfig{
		AccountSID: "AC42",
		AuthToken:  "secret",
		FromPhone:  "+15550009999",
		BaseURL:    srv.URL + "/",
	}, srv.Client(), discardLogger())

	if err := sender.Send(context.Background(), "+15550000001", "VibeCraft OTP: 482913\nValid for 5 minutes."); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotPath != "/2010-04-01/Accounts/AC42/Messages.json" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotUser != "AC42" || gotPass != "secret" {
		t.Fatalf("unexpected basic auth %q/%q", gotUser, gotPass)
	}
	if gotTo != "+15550000001" || gotFrom != "+15550009999" || !strings.Contains(gotBody, "482913") {
		t.Fatalf("unexpected form To=%q From=%q Body=%q", gotTo, gotFrom, gotBody)
	}
}

func TestTwilioSMSSenderSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"code":21211,"message":"The 'To' number is not a valid phone number.","status":400}`)
	}))
	defer srv.Close()

	sender := NewTwilioSMSSender(TwilioConfig{AccountSID: "AC42", AuthToken: "x", FromPhone: "+1", BaseURL: srv.URL}, srv.Client(), discardLogger())
	err := sender.Send(context.Background(), "bogus", "hi")
	if err == nil || !strings.Contains(err.Error(), "21211") {
		t.Fatalf("expected twilio error code in %v", err)
	}
}

func TestTwilioSMSSenderHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	sender := NewTwilioSMSSender(TwilioConfig{AccountSID: "AC42", AuthToken: "x", FromPhone: "+1", BaseURL: srv.URL}, srv.Client(), discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := sender.Send(ctx, "+15550000001", "hi"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestLogSMSSenderNeverFails(t *testing.T) {
	if err := NewLogSMSSender(discardLogger()).Send(context.Background(), "+15550000001", "hello"); err != nil {
		t.Fatalf("log sender: %v", err)
	}
}
