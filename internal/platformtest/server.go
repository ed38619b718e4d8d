// Package platformtest provides an in-process fake of the platform API for tests.
//
// It serves the OAuth2 token endpoint, the user/course/learning plan list and
// get endpoints, and the course and learning plan enrollment endpoints, and
// records every call so tests can assert on traffic.
package platformtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vaintrub/docebo-go/models"
)

// Credentials accepted by the fake token endpoint.
const (
	ClientID     = "test-client"
	ClientSecret = "test-secret"
	Username     = "admin"
	Password     = "admin-password"
)

// Call is one request seen by the server.
type Call struct {
	Method     string
	Path       string
	SearchText string
	PageSize   int
	Token      string
}

// EnrollmentCall is one enroll or unenroll request.
type EnrollmentCall struct {
	Method      string
	Kind        models.Kind
	ResourceIDs []string
	UserIDs     []string
	Body        map[string]interface{}
	Status      int
}

// Server is a fake platform API backed by httptest.Server.
type Server struct {
	*httptest.Server

	mu             sync.Mutex
	records        map[models.Kind][]models.Record
	rejectSearch   map[models.Kind]bool
	enrollFailures map[string]int
	rejectEnroll   map[string]string
	enrollDelay    time.Duration
	calls          []Call
	enrollments    []EnrollmentCall
	tokens         map[string]bool
	tokenCount     int
	tokenTTL       int
	tokenStatus    int
	tokenDelay     time.Duration
	pathStatus     map[string][]int
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		records:        make(map[models.Kind][]models.Record),
		rejectSearch:   make(map[models.Kind]bool),
		enrollFailures: make(map[string]int),
		rejectEnroll:   make(map[string]string),
		tokens:         make(map[string]bool),
		tokenTTL:       3600,
		pathStatus:     make(map[string][]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// AddRecords appends records of kind, served in insertion order.
func (s *Server) AddRecords(kind models.Kind, recs ...models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[kind] = append(s.records[kind], recs...)
}

// RejectSearch makes list calls with search_text on kind answer 400.
func (s *Server) RejectSearch(kind models.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectSearch[kind] = true
}

// FailEnrollment makes enroll and unenroll calls for userID answer status.
func (s *Server) FailEnrollment(userID string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollFailures[userID] = status
}

// RejectEnrollment makes enroll calls for userID answer 200 with an errors object.
func (s *Server) RejectEnrollment(userID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectEnroll[userID] = reason
}

// SetEnrollmentDelay delays every enrollment response by d.
func (s *Server) SetEnrollmentDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollDelay = d
}

// FailTokens makes the token endpoint answer status; 0 restores success.
func (s *Server) FailTokens(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenStatus = status
}

// SetTokenTTL sets expires_in for issued tokens; 0 omits the field.
func (s *Server) SetTokenTTL(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = seconds
}

// SetTokenDelay delays every token response by d.
func (s *Server) SetTokenDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenDelay = d
}

// RevokeTokens invalidates every token issued so far.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok := range s.tokens {
		s.tokens[tok] = false
	}
}

// QueueStatus makes the next len(statuses) calls to path answer with those
// statuses, in order, before normal handling resumes.
func (s *Server) QueueStatus(path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pathStatus[path] = append(s.pathStatus[path], statuses...)
}

// TokenExchanges returns the number of token requests served.
func (s *Server) TokenExchanges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCount
}

// Calls returns every non-token request seen so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CountCalls returns how many calls matched method and path.
func (s *Server) CountCalls(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// SearchCalls returns list calls on kind that carried search_text.
func (s *Server) SearchCalls(kind models.Kind) []Call {
	path := collectionPath(kind)
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == http.MethodGet && c.Path == path && c.SearchText != "" {
			out = append(out, c)
		}
	}
	return out
}

// Enrollments returns every enroll and unenroll request.
func (s *Server) Enrollments() []EnrollmentCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EnrollmentCall, len(s.enrollments))
	copy(out, s.enrollments)
	return out
}

func collectionPath(kind models.Kind) string {
	switch kind {
	case models.KindUser:
		return "/manage/v1/user"
	case models.KindCourse:
		return "/learn/v1/courses"
	case models.KindLearningPlan:
		return "/learningplan/v1/learningplans"
	}
	return ""
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/oauth2/token" {
		s.handleToken(w, r)
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method:     r.Method,
		Path:       r.URL.Path,
		SearchText: r.URL.Query().Get("search_text"),
		PageSize:   pageSize,
		Token:      token,
	})
	valid := s.tokens[token]
	var queued int
	if q := s.pathStatus[r.URL.Path]; len(q) > 0 {
		queued, s.pathStatus[r.URL.Path] = q[0], q[1:]
	}
	s.mu.Unlock()

	if !valid {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"message": "Invalid or expired token", "name": "invalid_token"})
		return
	}
	if queued != 0 {
		writeJSON(w, queued, map[string]interface{}{"message": http.StatusText(queued)})
		return
	}

	switch r.URL.Path {
	case "/learn/v1/enrollments":
		s.handleEnrollment(w, r, models.KindCourse, "course_ids")
		return
	case "/learningplan/v1/learningplans/enrollments":
		s.handleEnrollment(w, r, models.KindLearningPlan, "learningplan_ids")
		return
	}

	for _, kind := range []models.Kind{models.KindUser, models.KindCourse, models.KindLearningPlan} {
		base := collectionPath(kind)
		switch {
		case r.URL.Path == base && r.Method == http.MethodGet:
			s.handleList(w, r, kind)
			return
		case strings.HasPrefix(r.URL.Path, base+"/") && r.Method == http.MethodGet:
			s.handleGet(w, kind, strings.TrimPrefix(r.URL.Path, base+"/"))
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "route not found"})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.tokenCount++
	n := s.tokenCount
	status := s.tokenStatus
	ttl := s.tokenTTL
	delay := s.tokenDelay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid_request"})
		return
	}
	if status != 0 {
		writeJSON(w, status, map[string]interface{}{"error": "invalid_client", "error_description": "client rejected"})
		return
	}
	if r.PostForm.Get("grant_type") != "password" ||
		r.PostForm.Get("client_id") != ClientID ||
		r.PostForm.Get("client_secret") != ClientSecret ||
		r.PostForm.Get("username") != Username ||
		r.PostForm.Get("password") != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "invalid_grant", "error_description": "Invalid username and password combination"})
		return
	}

	token := fmt.Sprintf("token-%d", n)
	s.mu.Lock()
	s.tokens[token] = true
	s.mu.Unlock()

	resp := map[string]interface{}{
		"access_token": token,
		"token_type":   "Bearer",
		"scope":        r.PostForm.Get("scope"),
	}
	if ttl > 0 {
		resp["expires_in"] = ttl
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, kind models.Kind) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search_text"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize <= 0 {
		pageSize = 20
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}

	s.mu.Lock()
	reject := s.rejectSearch[kind]
	all := s.records[kind]
	s.mu.Unlock()

	if search != "" && reject {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": []string{"search_text is not supported"}})
		return
	}

	var matched []models.Record
	for _, rec := range all {
		if search == "" || recordContains(rec, search) {
			matched = append(matched, rec)
		}
	}

	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	items := matched[start:end]
	if items == nil {
		items = []models.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"items":         items,
			"has_more_data": end < len(matched),
			"total_count":   len(matched),
			"current_page":  page,
		},
	})
}

func (s *Server) handleGet(w http.ResponseWriter, kind models.Kind, id string) {
	s.mu.Lock()
	all := s.records[kind]
	s.mu.Unlock()

	for _, rec := range all {
		if rec.ID(kind) == id {
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": rec})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": []string{"Resource not found"}})
}

func (s *Server) handleEnrollment(w http.ResponseWriter, r *http.Request, kind models.Kind, idsField string) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{"message": "method not allowed"})
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "invalid body"})
		return
	}
	call := EnrollmentCall{
		Method:      r.Method,
		Kind:        kind,
		ResourceIDs: stringList(body[idsField]),
		UserIDs:     stringList(body["user_ids"]),
		Body:        body,
		Status:      http.StatusOK,
	}

	s.mu.Lock()
	delay := s.enrollDelay
	for _, id := range call.UserIDs {
		if status, ok := s.enrollFailures[id]; ok {
			call.Status = status
		}
	}
	var rejected []string
	if r.Method == http.MethodPost {
		for _, id := range call.UserIDs {
			if reason, ok := s.rejectEnroll[id]; ok {
				rejected = append(rejected, reason)
			}
		}
	}
	s.enrollments = append(s.enrollments, call)
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if call.Status != http.StatusOK {
		writeJSON(w, call.Status, map[string]interface{}{"message": []string{http.StatusText(call.Status)}})
		return
	}
	if len(rejected) > 0 {
		errs := map[string]interface{}{}
		for _, reason := range rejected {
			errs[reason] = call.UserIDs
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"errors": errs}})
		return
	}

	enrolled := make([]map[string]interface{}, 0, len(call.UserIDs))
	for _, id := range call.UserIDs {
		enrolled = append(enrolled, map[string]interface{}{"user_id": id})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"enrolled": enrolled}})
}

func recordContains(rec models.Record, needle string) bool {
	for k := range rec {
		if strings.Contains(strings.ToLower(rec.String(k)), needle) {
			return true
		}
	}
	return false
}

func stringList(v interface{}) []string {
	list, _ := v.([]interface{})
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
