package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func searchPath(term string) string {
	signals, _ := json.Marshal(map[string]string{"search": term})
	query := url.Values{}
	query.Set("datastar", string(signals))
	return "/dentists/search?" + query.Encode()
}

func TestHandleSearch_Datastar(t *testing.T) {
	s := newTestServer(t)
	seedDentist(t, s, "Ana", "Perez", "MP123")
	seedDentist(t, s, "Bruno", "Diaz", "MP456")
	b := newBrowser(t, s.handler())

	rr := b.datastarGet(searchPath("ana"))

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `id="dentist-table"`) {
		t.Fatalf("table not patched: %s", body)
	}
	if !strings.Contains(body, "<td>Ana</td>") {
		t.Errorf("body does not contain 'Ana'. Body: %s", body)
	}
	if strings.Contains(body, "<td>Bruno</td>") {
		t.Errorf("body contains 'Bruno', which does not match. Body: %s", body)
	}
}

func TestHandleSearch_AccentInsensitive(t *testing.T) {
	s := newTestServer(t)
	seedDentist(t, s, "José", "Núñez", "MP1")
	b := newBrowser(t, s.handler())

	body := b.datastarGet(searchPath("nunez")).Body.String()

	if !strings.Contains(body, "<td>José</td>") {
		t.Errorf("accented dentist not found. Body: %s", body)
	}
}

func TestHandleSearch_SupersededRequestPatchesNothing(t *testing.T) {
	d := newTestDeps(t)
	d.Sessions = newSessionRegistry(time.Minute, 200*time.Millisecond)
	s := newServer(d)
	seedDentist(t, s, "Ana", "Perez", "MP123")
	h := s.handler()
	b := newBrowser(t, h)
	b.get("/dentists") // session cookie

	first := make(chan *httptest.ResponseRecorder)
	go func() {
		first <- b.datastarGet(searchPath("an"))
	}()
	time.Sleep(50 * time.Millisecond)
	second := b.datastarGet(searchPath("ana"))

	if !strings.Contains(second.Body.String(), "<td>Ana</td>") {
		t.Errorf("last search did not run: %s", second.Body.String())
	}
	if body := (<-first).Body.String(); strings.Contains(body, "dentist-table") {
		t.Errorf("superseded search patched the table: %s", body)
	}
}

func TestHandleSearch_Plain(t *testing.T) {
	s := newTestServer(t)
	seedDentist(t, s, "Ana", "Perez", "MP123")
	seedDentist(t, s, "Bruno", "Diaz", "MP456")

	rr := newBrowser(t, s.handler()).get("/dentists/search?search=diaz")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<td>Bruno</td>") || strings.Contains(body, "<td>Ana</td>") {
		t.Errorf("unexpected results: %s", body)
	}
	if !strings.Contains(body, `value="diaz"`) {
		t.Errorf("search box lost the term: %s", body)
	}
}

func TestHandleStream(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/dentists/stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Datastar-Request", "true")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Content-Type = %q", ct)
	}

	// The subscription exists once the headers are out.
	seedDentist(t, s, "Carla", "Ruiz", "MP789")

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), "<td>Carla</td>") {
			return
		}
	}
	t.Fatalf("stream ended without the new dentist: %v", scanner.Err())
}
