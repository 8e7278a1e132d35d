package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func uploadPhoto(t *testing.T, env *testEnv, gallery, title string) string {
	t.Helper()
	form := newMultipart(t, map[string]string{"gallery": gallery, "title": title}, "image")
	resp, body := env.do(t, "POST", "/api/album", form, env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[map[string]any](t, body)["id"].(string)
}

func galleryIDs(t *testing.T, env *testEnv, gallery string) []string {
	t.Helper()
	resp, body := env.do(t, "GET", "/api/album/"+gallery, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ids []string
	for _, p := range decode[[]map[string]any](t, body) {
		ids = append(ids, p["id"].(string))
	}
	return ids
}

func TestAlbumReorderIsVisiblePublicly(t *testing.T) {
	env := newTestEnv(t)
	a := uploadPhoto(t, env, "ceremony", "Vows")
	b := uploadPhoto(t, env, "ceremony", "Rings")
	c := uploadPhoto(t, env, "ceremony", "Kiss")
	require.Equal(t, []string{a, b, c}, galleryIDs(t, env, "ceremony"))

	items, err := json.Marshal([]map[string]any{{"id": c, "order": 0}, {"id": a, "order": 1}, {"id": b, "order": 2}})
	require.NoError(t, err)
	resp, body := env.do(t, "PUT", "/api/album/ceremony/reorder", string(items), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	require.Equal(t, []string{c, a, b}, galleryIDs(t, env, "ceremony"))
}

func TestAlbumReorderUnknownPhotoChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	a := uploadPhoto(t, env, "ceremony", "Vows")
	b := uploadPhoto(t, env, "ceremony", "Rings")
	party := uploadPhoto(t, env, "party", "Cake")

	body := `[{"id":"` + b + `","order":0},{"id":"` + party + `","order":1}]`
	resp, _ := env.do(t, "PUT", "/api/album/ceremony/reorder", body, env.token)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, []string{a, b}, galleryIDs(t, env, "ceremony"))

	resp, _ = env.do(t, "PUT", "/api/album/ceremony/reorder", `[]`, env.token)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAlbumHiddenPhotosStayAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	a := uploadPhoto(t, env, "party", "Dance")
	uploadPhoto(t, env, "party", "Toast")

	resp, body := env.do(t, "PUT", "/api/album/"+a, `{"active":false,"title":"Dance floor"}`, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	require.Len(t, galleryIDs(t, env, "party"), 1)

	resp, body = env.do(t, "GET", "/api/album/admin/all", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]map[string]any](t, body), 2)

	resp, _ = env.do(t, "POST", "/api/album", `{"gallery":"party"}`, env.token)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
