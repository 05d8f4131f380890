package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/linkfolio/internal/config"
	"github.com/linkfolio/internal/db"
	"github.com/linkfolio/internal/router"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	handler   http.Handler
	visitor   httpClient
	admin     httpClient
	baseURL   string
	adminPass string
	user      db.User
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)
	suite.login(t)

	t.Run("profile and link lifecycle", suite.testProfileAndLinkLifecycle)
	t.Run("public endpoints", suite.testPublicEndpoints)
	t.Run("protected profile flow", suite.testProtectedProfileFlow)
	t.Run("admin pages", suite.testAdminPages)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{},
		&db.Profile{},
		&db.Link{},
		&db.AnalyticsEvent{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	db.DB = gdb

	hashed, err := bcrypt.GenerateFromPassword([]byte("e2e-secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := db.User{Username: "admin", Password: string(hashed)}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	engine := router.SetupRouter(config.AppConfig{
		SessionSecret: "test-session-secret",
		UploadDir:     t.TempDir(),
		UploadURLPath: "/uploads",
		BackupDir:     t.TempDir(),
		TemplateGlob:  "../../web/template/*.html",
		SiteBaseURL:   "http://example.test",
	})

	return &e2eSuite{
		handler:   engine,
		visitor:   newLocalClient(engine, true),
		admin:     newLocalClient(engine, true),
		baseURL:   "http://example.test",
		adminPass: "e2e-secret",
		user:      user,
	}
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	form := url.Values{
		"username": {s.user.Username},
		"password": {s.adminPass},
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/admin/login", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("failed to create login request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.admin.Do(req)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound && resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed, status %d", resp.StatusCode)
	}
}

// testProfileAndLinkLifecycle 走完整条主链：创建主页、加链接、重排、删除。
func (s *e2eSuite) testProfileAndLinkLifecycle(t *testing.T) {
	t.Helper()

	resp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/admin/api/profiles", map[string]interface{}{
		"name":  "Jane Doe",
		"title": "Software Engineer",
		"bio":   "Hi, I build things.",
		"email": "jane@example.com",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create profile expected 201, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
	var profile db.Profile
	decodeJSON(t, resp, &profile)
	if profile.Slug != "jane-doe" {
		t.Fatalf("expected slug jane-doe, got %q", profile.Slug)
	}

	linksPath := "/admin/api/profiles/" + idStr(profile.ID) + "/links"
	linkIDs := map[string]uint{}
	for _, name := range []string{"A", "B", "C"} {
		resp := s.mustRequestJSON(t, s.admin, http.MethodPost, linksPath, map[string]interface{}{
			"category": "other",
			"name":     name,
			"url":      "example.com/" + strings.ToLower(name),
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create link %s expected 201, got %d", name, resp.StatusCode)
		}
		var link db.Link
		decodeJSON(t, resp, &link)
		if !strings.HasPrefix(link.URL, "https://") {
			t.Fatalf("link URL should be normalized, got %q", link.URL)
		}
		linkIDs[name] = link.ID
	}

	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, linksPath+"/reorder", map[string]interface{}{
		"link_ids": []uint{linkIDs["C"], linkIDs["A"], linkIDs["B"]},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder expected 200, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}

	s.assertLinkOrder(t, profile.ID, []string{"C", "A", "B"})

	// 不完整的排列必须被整体拒绝，顺序保持不变
	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, linksPath+"/reorder", map[string]interface{}{
		"link_ids": []uint{linkIDs["A"], linkIDs["B"]},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("partial reorder expected 400, got %d", resp.StatusCode)
	}
	s.assertLinkOrder(t, profile.ID, []string{"C", "A", "B"})

	resp = s.mustRequest(t, s.admin, http.MethodDelete, "/admin/api/links/"+idStr(linkIDs["B"]), nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete link expected 200, got %d", resp.StatusCode)
	}
	s.assertLinkOrder(t, profile.ID, []string{"C", "A"})

	// 改名撞上已存在的 slug 要返回冲突
	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, "/admin/api/profiles", map[string]interface{}{
		"name": "John Roe",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create second profile expected 201, got %d", resp.StatusCode)
	}
	var second db.Profile
	decodeJSON(t, resp, &second)

	resp = s.mustRequestJSON(t, s.admin, http.MethodPut, "/admin/api/profiles/"+idStr(second.ID), map[string]interface{}{
		"name": "Jane Doe",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("conflicting rename expected 409, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.admin, http.MethodDelete, "/admin/api/profiles/"+idStr(second.ID), nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete profile expected 200, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testPublicEndpoints(t *testing.T) {
	t.Helper()

	resp := s.mustRequest(t, s.visitor, http.MethodGet, "/p/jane-doe", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile page expected 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Jane Doe") {
		t.Fatalf("profile page missing name: %s", body)
	}

	resp = s.mustRequest(t, s.visitor, http.MethodGet, "/p/no-such-slug", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown slug expected 404, got %d", resp.StatusCode)
	}

	var profile db.Profile
	if err := db.DB.Where("slug = ?", "jane-doe").First(&profile).Error; err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}
	if profile.ViewCount != 1 {
		t.Fatalf("expected view count 1, got %d", profile.ViewCount)
	}

	var link db.Link
	if err := db.DB.Where("profile_id = ? AND position = 0", profile.ID).First(&link).Error; err != nil {
		t.Fatalf("failed to load link: %v", err)
	}
	resp = s.mustRequest(t, s.visitor, http.MethodGet, "/click/"+idStr(link.ID), nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("click expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != link.URL {
		t.Fatalf("click redirected to %q, want %q", loc, link.URL)
	}
	if err := db.DB.First(&link, link.ID).Error; err != nil {
		t.Fatalf("failed to reload link: %v", err)
	}
	if link.ClickCount != 1 {
		t.Fatalf("expected click count 1, got %d", link.ClickCount)
	}

	resp = s.mustRequest(t, s.visitor, http.MethodGet, "/qr/jane-doe", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("qr expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "image/png") {
		t.Fatalf("qr content type %q", ct)
	}

	resp = s.mustRequest(t, s.visitor, http.MethodGet, "/vcard/jane-doe", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("vcard expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "BEGIN:VCARD") {
		t.Fatalf("vcard body missing BEGIN:VCARD: %s", body)
	}

	resp = s.mustRequest(t, s.visitor, http.MethodGet, "/pdf/jane-doe", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pdf expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.HasPrefix(body, "%PDF") {
		t.Fatalf("pdf body missing %%PDF header")
	}

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/profiles/"+idStr(profile.ID)+"/stats", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats expected 200, got %d", resp.StatusCode)
	}
	var stats struct {
		TotalViews int64            `json:"total_views"`
		Histogram  []map[string]any `json:"histogram"`
	}
	decodeJSON(t, resp, &stats)
	if stats.TotalViews != 1 {
		t.Fatalf("expected total_views 1, got %d", stats.TotalViews)
	}
	if len(stats.Histogram) != 8 {
		t.Fatalf("expected 8 histogram buckets, got %d", len(stats.Histogram))
	}
}

// testProtectedProfileFlow 覆盖密码保护：锁定页不计浏览，解锁后恢复正常
func (s *e2eSuite) testProtectedProfileFlow(t *testing.T) {
	t.Helper()

	var profile db.Profile
	if err := db.DB.Where("slug = ?", "jane-doe").First(&profile).Error; err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}
	viewsBefore := profile.ViewCount

	resp := s.mustRequestJSON(t, s.admin, http.MethodPut, "/admin/api/profiles/"+idStr(profile.ID)+"/password", map[string]interface{}{
		"password": "open-sesame",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set password expected 200, got %d", resp.StatusCode)
	}

	// 新访客只能看到锁定页
	stranger := newLocalClient(s.handler, true)
	resp = s.mustRequest(t, stranger, http.MethodGet, "/p/jane-doe", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("locked page expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); strings.Contains(body, "Jane Doe") {
		t.Fatalf("locked page leaked profile content")
	}

	wrongForm := url.Values{"password": {"nope"}}
	resp = s.mustRequest(t, stranger, http.MethodPost, "/p/jane-doe/unlock",
		strings.NewReader(wrongForm.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password expected 401, got %d", resp.StatusCode)
	}

	goodForm := url.Values{"password": {"open-sesame"}}
	resp = s.mustRequest(t, stranger, http.MethodPost, "/p/jane-doe/unlock",
		strings.NewReader(goodForm.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("unlock expected 302, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, stranger, http.MethodGet, "/p/jane-doe", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlocked page expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Jane Doe") {
		t.Fatalf("unlocked page missing profile content")
	}

	if err := db.DB.First(&profile, profile.ID).Error; err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if profile.ViewCount != viewsBefore+1 {
		t.Fatalf("only the unlocked view should count, got %d, want %d", profile.ViewCount, viewsBefore+1)
	}

	resp = s.mustRequest(t, s.admin, http.MethodDelete, "/admin/api/profiles/"+idStr(profile.ID)+"/password", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove password expected 200, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testAdminPages(t *testing.T) {
	t.Helper()

	needs200 := []string{
		"/admin/dashboard",
		"/admin/profiles",
		"/admin/profiles/jane-doe/edit",
	}
	for _, path := range needs200 {
		resp := s.mustRequest(t, s.admin, http.MethodGet, path, nil, nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s expected 200, got %d", path, resp.StatusCode)
		}
	}

	resp := s.mustRequest(t, s.admin, http.MethodGet, "/admin/logout", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("logout expected 302, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/admin/dashboard", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("dashboard after logout expected redirect, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) assertLinkOrder(t *testing.T, profileID uint, want []string) {
	t.Helper()

	resp := s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/profiles/"+idStr(profileID)+"/links", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list links expected 200, got %d", resp.StatusCode)
	}

	var links []db.Link
	decodeJSON(t, resp, &links)
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d", len(want), len(links))
	}
	for i, link := range links {
		if link.Name != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], link.Name)
		}
		if link.Position != i {
			t.Fatalf("link %q: expected position %d, got %d", link.Name, i, link.Position)
		}
	}
}

func (s *e2eSuite) mustRequest(t *testing.T, client httpClient, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, client httpClient, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, client, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
