package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"you-sub/internal/models"
	"you-sub/internal/reconcile"
	"you-sub/internal/test"
	"you-sub/internal/view"
	"you-sub/pkg/tasks"
)

func newTestHandlers(store *test.MemStore) (*Handlers, *test.MockTaskEnqueuer, *test.MockTaskInspector) {
	enqueuer := &test.MockTaskEnqueuer{}
	inspector := &test.MockTaskInspector{Tasks: map[string]*asynq.TaskInfo{}}
	h := New(reconcile.New(store), view.NewBuilder(language.English), enqueuer, inspector, Options{
		BaseURL:       "https://subs.example.com",
		SyncTimeout:   time.Minute,
		SyncRetention: time.Hour,
	})
	return h, enqueuer, inspector
}

func seededStore() *test.MemStore {
	return test.NewMemStore(models.State{
		Subscriptions: map[string]models.Subscription{
			"UC1": {ChannelID: "UC1", Name: "PewDiePie", URL: "https://www.youtube.com/channel/UC1", Icon: "https://i/1", Group: "Gaming"},
			"UC2": {ChannelID: "UC2", Name: "Lofi Girl", URL: "https://www.youtube.com/channel/UC2", Icon: "https://i/2", Group: models.DefaultGroup},
		},
		Groups: []string{models.DefaultGroup, "Gaming", "Empty"},
	})
}

func TestGetGroups(t *testing.T) {
	h, _, _ := newTestHandlers(seededStore())

	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	rr := httptest.NewRecorder()
	h.GetGroups(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var vm models.ViewModel
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &vm))
	require.Len(t, vm.Groups, 2)
	assert.Equal(t, "Gaming", vm.Groups[0].Name)
	assert.True(t, vm.Groups[0].Deletable)
	assert.Equal(t, models.DefaultGroup, vm.Groups[1].Name)
	assert.False(t, vm.Groups[1].Deletable)
	assert.Equal(t, []string{"Empty", "Gaming", models.DefaultGroup}, vm.Options)
}

func TestGetGroupsStoreFailure(t *testing.T) {
	store := seededStore()
	store.LoadErr = errors.New("connection refused")
	h, _, _ := newTestHandlers(store)

	rr := httptest.NewRecorder()
	h.GetGroups(rr, httptest.NewRequest(http.MethodGet, "/groups", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestPostGroup(t *testing.T) {
	store := seededStore()
	h, _, _ := newTestHandlers(store)

	t.Run("json body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/groups", strings.NewReader(`{"name":"Sports"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.PostGroup(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, store.State.Groups, "Sports")
	})

	t.Run("form body", func(t *testing.T) {
		form := url.Values{}
		form.Add("name", " News ")
		req := httptest.NewRequest(http.MethodPost, "/groups", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		h.PostGroup(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, store.State.Groups, "News")
	})

	t.Run("duplicate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/groups", strings.NewReader(`{"name":"Sports"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.PostGroup(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/groups", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.PostGroup(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDeleteGroup(t *testing.T) {
	store := seededStore()
	h, _, _ := newTestHandlers(store)

	t.Run("reassigns members", func(t *testing.T) {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/groups/Gaming", nil), map[string]string{"name": "Gaming"})
		rr := httptest.NewRecorder()
		h.DeleteGroup(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, models.DefaultGroup, store.State.Subscriptions["UC1"].Group)
		assert.NotContains(t, store.State.Groups, "Gaming")
	})

	t.Run("default group is protected", func(t *testing.T) {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/groups/Ungrouped", nil), map[string]string{"name": models.DefaultGroup})
		rr := httptest.NewRecorder()
		h.DeleteGroup(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, store.State.Groups, models.DefaultGroup)
	})
}

func TestPutSubscriptionGroup(t *testing.T) {
	store := seededStore()
	h, _, _ := newTestHandlers(store)

	put := func(channelID, body string) int {
		req := httptest.NewRequest(http.MethodPut, "/subscriptions/"+channelID+"/group", strings.NewReader(body))
		req = mux.SetURLVars(req, map[string]string{"channelId": channelID})
		rr := httptest.NewRecorder()
		h.PutSubscriptionGroup(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, put("UC2", `{"group":"Gaming"}`))
	assert.Equal(t, "Gaming", store.State.Subscriptions["UC2"].Group)

	assert.Equal(t, http.StatusNoContent, put("missing", `{"group":"Gaming"}`))
	assert.NotContains(t, store.State.Subscriptions, "missing")

	assert.Equal(t, http.StatusBadRequest, put("UC2", `{}`))
	assert.Equal(t, http.StatusBadRequest, put("UC2", `not json`))
}

func TestGetGroupRSS(t *testing.T) {
	h, _, _ := newTestHandlers(seededStore())

	get := func(name string) *httptest.ResponseRecorder {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/groups/"+name+"/rss", nil), map[string]string{"name": name})
		rr := httptest.NewRecorder()
		h.GetGroupRSS(rr, req)
		return rr
	}

	rr := get("Gaming")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/rss+xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<title>PewDiePie</title>")
	assert.NotContains(t, rr.Body.String(), "Lofi Girl")

	assert.Equal(t, http.StatusNotFound, get("Empty").Code)
	assert.Equal(t, http.StatusNotFound, get("Nope").Code)
}

func TestPostSync(t *testing.T) {
	h, enqueuer, _ := newTestHandlers(seededStore())

	body := `{"pageUrl":"https://www.youtube.com/feed/channels","subscriptions":[{"name":"PewDiePie","profileUrl":"https://www.youtube.com/channel/UC1","iconUrl":"//i/1"}]}`
	rr := httptest.NewRecorder()
	h.PostSync(rr, httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(body)))

	require.Equal(t, http.StatusAccepted, rr.Code)
	var status syncStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "test-task-id", status.TaskID)
	assert.Equal(t, "pending", status.State)

	require.Len(t, enqueuer.EnqueuedTasks, 1)
	assert.Equal(t, tasks.TypeSyncSubscriptions, enqueuer.EnqueuedTasks[0].Type())
	var payload tasks.SyncSubscriptionsTaskPayload
	require.NoError(t, json.Unmarshal(enqueuer.EnqueuedTasks[0].Payload(), &payload))
	assert.Equal(t, "https://www.youtube.com/feed/channels", payload.PageURL)
	assert.Len(t, payload.Subscriptions, 1)
}

func TestPostSyncRejectsEmptyUpload(t *testing.T) {
	h, enqueuer, _ := newTestHandlers(seededStore())

	rr := httptest.NewRecorder()
	h.PostSync(rr, httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(`{"pageUrl":"https://www.youtube.com/feed/channels"}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, enqueuer.EnqueuedTasks)
}

func TestPostSyncEnqueueFailure(t *testing.T) {
	h, enqueuer, _ := newTestHandlers(seededStore())
	enqueuer.Err = errors.New("redis down")

	rr := httptest.NewRecorder()
	h.PostSync(rr, httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(`{"subscriptions":[]}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetSync(t *testing.T) {
	h, _, inspector := newTestHandlers(seededStore())
	inspector.Tasks["failed-task"] = &asynq.TaskInfo{
		ID:      "failed-task",
		State:   asynq.TaskStateArchived,
		LastErr: "failed to sync subscriptions: navigate: subscriptions could not be scraped",
	}
	inspector.Tasks["done-task"] = &asynq.TaskInfo{
		ID:     "done-task",
		State:  asynq.TaskStateCompleted,
		Result: []byte(`{"subscriptions":2}`),
	}

	get := func(id string) *httptest.ResponseRecorder {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/sync/"+id, nil), map[string]string{"id": id})
		rr := httptest.NewRecorder()
		h.GetSync(rr, req)
		return rr
	}

	rr := get("failed-task")
	require.Equal(t, http.StatusOK, rr.Code)
	var status syncStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "archived", status.State)
	assert.Contains(t, status.Error, "could not be scraped")

	rr = get("done-task")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "completed", status.State)
	assert.Equal(t, `{"subscriptions":2}`, status.Result)

	assert.Equal(t, http.StatusNotFound, get("unknown").Code)
}
