package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vitasurvey/internal/config"
	"vitasurvey/internal/model"
	"vitasurvey/internal/service"
	"vitasurvey/internal/survey"
	"vitasurvey/internal/testutil"
	"vitasurvey/internal/transport/ws"
)

type apiClient struct {
	t           *testing.T
	handler     http.Handler
	token       string
	submissions *testutil.SubmissionRepo
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	logger := zap.NewNop()
	auth := service.NewAuthService("test-secret")
	submissions := testutil.NewSubmissionRepo()
	svc := service.NewSurveyService(
		testutil.NewCategoryRepo(testutil.Catalog(t)),
		testutil.NewMemberRepo(model.Member{ID: "m-1", Gender: "female"}),
		submissions,
		testutil.NewTreeCache(),
		testutil.NewSessionCache(),
		survey.DefaultRules(),
		logger,
	)
	hub := ws.NewHub(logger)
	t.Cleanup(hub.Close)
	svc.SetBroadcaster(hub)

	tok, err := auth.GenerateMemberToken("m-1", time.Hour)
	require.NoError(t, err)

	return &apiClient{
		t: t,
		handler: NewRouter(&Container{
			AuthService:   auth,
			SurveyService: svc,
			WSHub:         hub,
			CORS:          config.Default().CORS,
			Logger:        logger,
		}),
		token:       tok.Token,
		submissions: submissions,
	}
}

func (c *apiClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(context.Background())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) service.SessionView {
	t.Helper()
	var view service.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestRouter_Health(t *testing.T) {
	api := newAPI(t)
	api.token = ""

	rec := api.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RequiresAuth(t *testing.T) {
	api := newAPI(t)
	api.token = ""

	rec := api.do(http.MethodPost, "/v1/surveys/sessions", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Preflight(t *testing.T) {
	api := newAPI(t)
	api.token = ""

	rec := api.do(http.MethodOptions, "/v1/surveys/sessions", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestRouter_SurveyFlow(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/v1/surveys/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decode(t, rec)
	base := "/v1/surveys/sessions/" + view.SessionID
	require.NotNil(t, view.Current)
	assert.Equal(t, 10, view.Current.SubCategory.ID)

	rec = api.do(http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "first page is unanswered")

	rec = api.do(http.MethodPut, base+"/answers/1", map[string]string{"text": "41"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode(t, rec).Current.CanAdvance)

	rec = api.do(http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, decode(t, rec).Current.SubCategory.ID)

	rec = api.do(http.MethodPost, base+"/answers/2/toggle", map[string]int{"optionId": testutil.OptionIndigestion})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 22, decode(t, rec).Current.SubCategory.ID)

	rec = api.do(http.MethodPost, base+"/prev", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, decode(t, rec).Current.SubCategory.ID)

	for _, step := range []struct {
		questionID string
		sub        int
	}{{"", 22}, {"4", 30}, {"5", 31}, {"6", 0}} {
		if step.questionID != "" {
			rec = api.do(http.MethodPut, base+"/answers/"+step.questionID, map[string]string{"text": "ok"})
			require.Equal(t, http.StatusOK, rec.Code)
		}
		rec = api.do(http.MethodPost, base+"/next", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view = decode(t, rec)
		if step.sub != 0 {
			assert.Equal(t, step.sub, view.Current.SubCategory.ID)
		}
	}
	assert.Equal(t, model.SessionComplete, view.State)
	assert.NotEmpty(t, view.SubmissionID)

	rec = api.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/v1/surveys/submissions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Submissions []model.Submission `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Submissions, 1)
	assert.Len(t, list.Submissions[0].Responses, 5)
}

func TestRouter_AnswerValidation(t *testing.T) {
	api := newAPI(t)
	view := decode(t, api.do(http.MethodPost, "/v1/surveys/sessions", nil))
	base := "/v1/surveys/sessions/" + view.SessionID

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{name: "no field", path: "/answers/1", body: map[string]string{}, status: http.StatusBadRequest},
		{name: "two fields", path: "/answers/1", body: map[string]interface{}{"text": "a", "optionId": 1}, status: http.StatusBadRequest},
		{name: "unknown question", path: "/answers/999", body: map[string]string{"text": "a"}, status: http.StatusBadRequest},
		{name: "toggle text question", path: "/answers/1/toggle", body: map[string]int{"optionId": 1}, status: http.StatusBadRequest},
		{name: "bad body", path: "/answers/1", body: "text", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPut
			if tt.path == "/answers/1/toggle" {
				method = http.MethodPost
			}
			rec := api.do(method, base+tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_SubmissionFailure(t *testing.T) {
	api := newAPI(t)
	view := decode(t, api.do(http.MethodPost, "/v1/surveys/sessions", nil))
	base := "/v1/surveys/sessions/" + view.SessionID

	// walk to the last page: 10, 20, 21, 30, 31
	answers := []struct {
		path string
		body interface{}
	}{
		{"/answers/1", map[string]string{"text": "41"}},
		{"/answers/2", map[string][]int{"optionIds": {testutil.OptionInsomnia}}},
		{"/answers/3", map[string]string{"text": "ok"}},
		{"/answers/5", map[string]string{"text": "ok"}},
		{"/answers/6", map[string]string{"text": "ok"}},
	}
	for i, a := range answers {
		require.Equal(t, http.StatusOK, api.do(http.MethodPut, base+a.path, a.body).Code)
		if i < len(answers)-1 {
			require.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/next", nil).Code)
		}
	}

	api.submissions.Err = errors.New("insert failed")
	rec := api.do(http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = api.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.SessionActive, decode(t, rec).State)

	rec = api.do(http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
