package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/salesiq/config"
	"github.com/BerniceZTT/salesiq/controllers"
	"github.com/BerniceZTT/salesiq/repository"
	"github.com/BerniceZTT/salesiq/tasks"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	manager *tasks.Manager
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithStore(t, repository.NewMemoryStore())
}

func newTestServerWithStore(t *testing.T, store repository.Store) *testServer {
	gin.SetMode(gin.TestMode)
	repository.SetStore(store)

	cfg := config.LoadConfig()
	cfg.SimulatedLatency = 0
	cfg.AllowedOrigins = nil
	manager := tasks.NewManager(nil)
	controllers.Setup(cfg, manager, nil, nil)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = manager.Shutdown(ctx)
	})
	return &testServer{t: t, router: SetupRouter(cfg), manager: manager}
}

func (s *testServer) do(method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (s *testServer) waitJob(id string) tasks.Job {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	job, err := s.manager.Wait(ctx, id)
	require.NoError(s.t, err)
	return job
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = s.do(http.MethodGet, "/api/db-status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"driver":"memory"`)
}

func TestCustomerList(t *testing.T) {
	s := newTestServer(t)

	var list struct {
		Customers []struct {
			Name string `json:"name"`
		} `json:"customers"`
		Total int `json:"total"`
	}
	w := s.do(http.MethodGet, "/api/customers?search=ACME", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "Acme Corp", list.Customers[0].Name)

	w = s.do(http.MethodGet, "/api/customers?segment=High%20Value&sortBy=totalSpent&order=desc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Equal(t, 3, list.Total)
	assert.Equal(t, "Enterprise Plus", list.Customers[0].Name)
	assert.Equal(t, "Acme Corp", list.Customers[2].Name)

	w = s.do(http.MethodGet, "/api/customers?sortBy=password", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decode(t, w, nil).Code)
}

func TestCustomerLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/customers", map[string]interface{}{"email": "new@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decode(t, w, nil).Code)

	var created struct {
		ID      string `json:"id"`
		Segment string `json:"segment"`
	}
	w = s.do(http.MethodPost, "/api/customers", map[string]interface{}{
		"name": "Nordic AB", "email": "hej@nordic.se", "totalSpent": 1200, "orderCount": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &created)
	assert.Equal(t, "New", created.Segment)

	w = s.do(http.MethodPut, "/api/customers/"+created.ID, map[string]interface{}{"segment": "Regular"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/api/customers/"+created.ID, map[string]interface{}{"segment": "Gold"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/customers/"+created.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFIRMATION_REQUIRED", decode(t, w, nil).Code)

	w = s.do(http.MethodDelete, "/api/customers/"+created.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/customers/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, "/api/customers/"+created.ID, map[string]interface{}{"segment": "Regular"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/api/customers/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomerExport(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/customers/export?segment=New", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "customers.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name,Email,Total Spent,Order Count,Last Order Date,Segment", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "StartupXYZ,"))

	w = s.do(http.MethodGet, "/api/customers/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	w = s.do(http.MethodGet, "/api/customers/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsers(t *testing.T) {
	s := newTestServer(t)

	var stats struct {
		TotalUsers  int `json:"totalUsers"`
		ActiveUsers int `json:"activeUsers"`
	}
	decode(t, s.do(http.MethodGet, "/api/users/stats", nil), &stats)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 3, stats.ActiveUsers)

	w := s.do(http.MethodPost, "/api/users/3/toggle-status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Total int `json:"total"`
	}
	decode(t, s.do(http.MethodGet, "/api/users?status=inactive", nil), &list)
	assert.Equal(t, 1, list.Total)

	var roles []struct {
		Role string `json:"role"`
	}
	decode(t, s.do(http.MethodGet, "/api/users/roles", nil), &roles)
	require.Len(t, roles, 3)
	assert.Equal(t, "admin", roles[0].Role)

	var created struct {
		Permissions struct {
			ManageUsers bool `json:"manageUsers"`
			ImportData  bool `json:"importData"`
		} `json:"permissions"`
	}
	w = s.do(http.MethodPost, "/api/users", map[string]interface{}{
		"name": "Lars Larsson", "email": "lars@example.com", "role": "manager",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &created)
	assert.False(t, created.Permissions.ManageUsers)
	assert.True(t, created.Permissions.ImportData)

	w = s.do(http.MethodPost, "/api/users", map[string]interface{}{
		"name": "Lars Igen", "email": "LARS@example.com", "role": "viewer",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/users", map[string]interface{}{
		"name": "Nobody", "email": "nobody@example.com", "role": "owner",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/users/missing?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodPut, "/api/users/missing", map[string]interface{}{"department": "Sales"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodPost, "/api/users/missing/toggle-status", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardAndCharts(t *testing.T) {
	s := newTestServer(t)

	var dashboard struct {
		Cards  []struct{ Key string } `json:"cards"`
		Charts []struct{ Name string } `json:"charts"`
	}
	w := s.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &dashboard)
	assert.NotEmpty(t, dashboard.Cards)
	assert.Len(t, dashboard.Charts, 5)

	w = s.do(http.MethodGet, "/api/charts/monthly-sales?format=svg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "<svg"))

	w = s.do(http.MethodGet, "/api/charts/regions?format=png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = s.do(http.MethodGet, "/api/charts/monthly-sales?type=line", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chart struct {
		Scene struct {
			Kind    string        `json:"kind"`
			Markers []interface{} `json:"markers"`
		} `json:"scene"`
	}
	decode(t, w, &chart)
	assert.Equal(t, "line", chart.Scene.Kind)
	assert.Len(t, chart.Scene.Markers, 6)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/charts/unknown", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/charts/regions?type=radar", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/charts/regions?format=gif", nil).Code)
}

func TestChartHover(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/charts/regions/hover?x=abc&y=1", nil).Code)

	var hover struct {
		Hit   bool `json:"hit"`
		Hover struct {
			Index          int    `json:"index"`
			FormattedValue string `json:"formattedValue"`
		} `json:"hover"`
	}
	// 默认尺寸下饼图圆心在 (250, 150)，正上方属于第一个扇区
	w := s.do(http.MethodGet, "/api/charts/regions/hover?x=255&y=110", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &hover)
	assert.True(t, hover.Hit)
	assert.Equal(t, 0, hover.Hover.Index)
	assert.True(t, strings.HasSuffix(hover.Hover.FormattedValue, "kr"))

	w = s.do(http.MethodGet, "/api/charts/regions/hover?x=5&y=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &hover)
	assert.False(t, hover.Hit)
}

func TestRenderChart(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/charts/render?format=svg", map[string]interface{}{
		"type":  "bar",
		"title": "Q1",
		"data": []map[string]interface{}{
			{"label": "Jan", "value": 10},
			{"label": "Feb", "value": 20},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Feb")

	w = s.do(http.MethodPost, "/api/charts/render", map[string]interface{}{"type": "bar", "data": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/charts/render", map[string]interface{}{
		"type": "pie",
		"data": []map[string]interface{}{{"label": "A", "value": -1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, kind := range []string{"line", "area"} {
		w = s.do(http.MethodPost, "/api/charts/render?format=png", map[string]interface{}{
			"type": kind,
			"data": []map[string]interface{}{{"label": "Jan", "value": 10}},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	}
}

const salesCSV = "Date,Customer,Product,Quantity,Unit Price,Total Amount,Region\n" +
	"2024-02-01,Acme Corp,Premium Widget,2,100,200,North\n" +
	"2024-02-02,\"Smith, Jones & Co\",Basic Widget,1,50,50,Central\n" +
	"2024-02-03,Broken Row,Widget,many,1,1,North\n"

func (s *testServer) upload(files map[string]string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(s.t, err)
		_, err = part.Write([]byte(content))
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type uploadResults struct {
	Uploads []struct {
		Upload struct {
			ID     string   `json:"id"`
			Name   string   `json:"name"`
			Status string   `json:"status"`
			Errors []string `json:"errors"`
		} `json:"upload"`
		Job *tasks.Job `json:"job"`
	} `json:"uploads"`
}

func TestImportBatch(t *testing.T) {
	s := newTestServer(t)

	w := s.upload(map[string]string{"sales.csv": salesCSV, "notes.txt": "hello"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var results uploadResults
	decode(t, w, &results)
	require.Len(t, results.Uploads, 2)

	var uploadID string
	for _, r := range results.Uploads {
		switch r.Upload.Name {
		case "notes.txt":
			assert.Equal(t, "error", r.Upload.Status)
			assert.Nil(t, r.Job)
			assert.NotEmpty(t, r.Upload.Errors)
		case "sales.csv":
			require.NotNil(t, r.Job)
			assert.Equal(t, tasks.StatusSucceeded, s.waitJob(r.Job.ID).Status)
			uploadID = r.Upload.ID
		}
	}
	require.NotEmpty(t, uploadID)

	var detail struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
		Report   struct {
			TotalRows int `json:"totalRows"`
			ValidRows int `json:"validRows"`
			RowErrors []struct {
				Row    int    `json:"row"`
				Column string `json:"column"`
			} `json:"rowErrors"`
		} `json:"report"`
	}
	decode(t, s.do(http.MethodGet, "/api/imports/"+uploadID, nil), &detail)
	assert.Equal(t, "completed", detail.Status)
	assert.Equal(t, 100, detail.Progress)
	assert.Equal(t, 3, detail.Report.TotalRows)
	assert.Equal(t, 2, detail.Report.ValidRows)
	require.Len(t, detail.Report.RowErrors, 1)
	assert.Equal(t, 4, detail.Report.RowErrors[0].Row)

	var preview struct {
		Rows      []map[string]string `json:"rows"`
		TotalRows int                 `json:"totalRows"`
	}
	decode(t, s.do(http.MethodGet, "/api/imports/"+uploadID+"/preview?limit=1", nil), &preview)
	require.Len(t, preview.Rows, 1)
	assert.Equal(t, 3, preview.TotalRows)
	assert.Equal(t, "Acme Corp", preview.Rows[0]["Customer"])

	w = s.do(http.MethodGet, "/api/imports/"+uploadID+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, salesCSV, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sales.csv")

	var sales struct {
		Total int `json:"total"`
	}
	decode(t, s.do(http.MethodGet, "/api/sales?uploadId="+uploadID, nil), &sales)
	assert.Equal(t, 2, sales.Total)

	// 导入的区域进入看板
	w = s.do(http.MethodGet, "/api/charts/regions", nil)
	assert.Contains(t, w.Body.String(), "Central")

	assert.Equal(t, http.StatusConflict, s.do(http.MethodDelete, "/api/imports/"+uploadID, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/imports/"+uploadID+"?confirm=true", nil).Code)
	decode(t, s.do(http.MethodGet, "/api/sales?uploadId="+uploadID, nil), &sales)
	assert.Equal(t, 0, sales.Total)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/imports/"+uploadID, nil).Code)
}

func TestImportRequiresFiles(t *testing.T) {
	s := newTestServer(t)
	w := s.upload(map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportTemplate(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/imports/template", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Date,Customer,Product,Quantity,Unit Price,Total Amount"))
}

func TestIntegrations(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/integrations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sk_live_***************")
	assert.NotContains(t, w.Body.String(), "ShopifyDemoKey")

	// 未连接的集成不能同步
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/integrations/3/sync", nil).Code)

	var job tasks.Job
	w = s.do(http.MethodPost, "/api/integrations/1/sync", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	decode(t, w, &job)
	assert.Equal(t, tasks.StatusSucceeded, s.waitJob(job.ID).Status)

	integration, err := repository.GetStore().GetIntegration(context.Background(), "1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), integration.LastSync, time.Minute)

	// 没有 API Key 的集成测试失败并标记为错误
	w = s.do(http.MethodPost, "/api/integrations/3/test", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	decode(t, w, &job)
	done := s.waitJob(job.ID)
	assert.Equal(t, tasks.StatusFailed, done.Status)
	integration, err = repository.GetStore().GetIntegration(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "error", string(integration.Status))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/integrations/9/test", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/integrations", map[string]interface{}{
		"name": "Kassa", "type": "paypal",
	}).Code)
}

func TestWebhook(t *testing.T) {
	s := newTestServer(t)

	var token struct {
		Token string `json:"token"`
	}
	w := s.do(http.MethodPost, "/api/integrations/1/webhook-token", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &token)
	require.NotEmpty(t, token.Token)

	payload := map[string]interface{}{
		"rows": []map[string]string{
			{"Date": "2024-03-01", "Customer": "Acme Corp", "Product": "Widget", "Quantity": "1", "Unit Price": "10", "Total Amount": "10"},
		},
	}

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/integrations/1/webhook", payload).Code)
	assert.Equal(t, http.StatusForbidden,
		s.do(http.MethodPost, "/api/integrations/2/webhook", payload, "Authorization", "Bearer "+token.Token).Code)

	w = s.do(http.MethodPost, "/api/integrations/1/webhook", payload, "Authorization", "Bearer "+token.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sales struct {
		Total int `json:"total"`
	}
	decode(t, s.do(http.MethodGet, "/api/sales?uploadId=integration:1", nil), &sales)
	assert.Equal(t, 1, sales.Total)

	invalid := map[string]interface{}{
		"rows": []map[string]string{{"Product": "Widget"}},
	}
	w = s.do(http.MethodPost, "/api/integrations/1/webhook", invalid, "Authorization", "Bearer "+token.Token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
	assert.Contains(t, w.Body.String(), "missingColumns")
}

func TestNotificationSettings(t *testing.T) {
	s := newTestServer(t)

	var view struct {
		Settings struct {
			ReportDay string   `json:"reportDay"`
			Metrics   []string `json:"metrics"`
		} `json:"settings"`
	}
	decode(t, s.do(http.MethodGet, "/api/notifications/sms", nil), &view)
	assert.Equal(t, "friday", view.Settings.ReportDay)

	w := s.do(http.MethodPut, "/api/notifications/sms", map[string]interface{}{
		"enabled": true, "phone": "+46701234567", "reportDay": "someday", "metrics": []string{"revenue"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/notifications/sms", map[string]interface{}{
		"enabled": true, "phone": "+46701234567", "reportDay": "Monday", "metrics": []string{"aov"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &view)
	assert.Equal(t, "monday", view.Settings.ReportDay)
	assert.Equal(t, []string{"aov"}, view.Settings.Metrics)
}

func TestJobsAndOperationLogs(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/jobs/missing", nil).Code)

	var job tasks.Job
	decode(t, s.do(http.MethodPost, "/api/integrations/2/sync", nil), &job)
	s.waitJob(job.ID)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodDelete, "/api/jobs/"+job.ID, nil).Code)

	var jobs struct {
		Total int `json:"total"`
	}
	decode(t, s.do(http.MethodGet, "/api/jobs", nil), &jobs)
	assert.Equal(t, 1, jobs.Total)

	var logs struct {
		Logs []struct {
			Method string `json:"method"`
			Path   string `json:"path"`
		} `json:"logs"`
	}
	decode(t, s.do(http.MethodGet, "/api/operation-logs?limit=10", nil), &logs)
	require.NotEmpty(t, logs.Logs)
	assert.Equal(t, http.MethodDelete, logs.Logs[0].Method)
	assert.Equal(t, "/api/jobs/"+job.ID, logs.Logs[0].Path)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/api/health", nil)

	w := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "salesiq_http_requests_total")
}
