package handlers_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"MucosaView/config"
	"MucosaView/models"
	"MucosaView/routes"
	"MucosaView/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer wires the full router against an in-memory database and blob
// store, so these tests exercise the same stack a deployment runs.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Patient{}, &models.Visit{}, &models.Photo{}))

	cfg := &config.AppConfig{AllowedOrigins: []string{"*"}}
	return routes.SetupRoutes(nil, cfg, db, storage.NewMemoryStore())
}

func doJSON(t *testing.T, server http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const registerBody = `{
	"datos_personales": {
		"dni": "12345678", "nombre": "Maria", "apellido": "Quispe", "edad": 27,
		"region": "Cusco", "provincia": "Cusco", "distrito": "Wanchaq", "direccion": "Av. El Sol 120"
	},
	"datos_obstetricos": {"pulsaciones": 82, "hemoglobina": 11.5, "oxigeno": 97}
}`

func TestRegisterEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/mucosa/registro", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.NotEmpty(t, body["patient_id"])
	assert.NotEmpty(t, body["visit_id"])
	assert.Equal(t, float64(1), body["visit_number"])
	assert.Nil(t, body["gestational_weeks"])

	// Same DNI again: patient reused, sequence advances.
	rec = doJSON(t, server, http.MethodPost, "/api/mucosa/registro", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, body["patient_id"], decode(t, rec)["patient_id"])
	assert.Equal(t, float64(2), decode(t, rec)["visit_number"])
}

func TestRegisterEndpointRejectsBadVitals(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/mucosa/registro", `{
		"datos_personales": {"dni": "12345678", "nombre": "Maria", "apellido": "Quispe"},
		"datos_obstetricos": {"oxigeno": 150}
	}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterEndpointRejectsIncompletePatient(t *testing.T) {
	server := newTestServer(t)

	// Missing age and location on a create: a 400 with field errors, nothing
	// persisted.
	rec := doJSON(t, server, http.MethodPost, "/api/mucosa/registro", `{
		"datos_personales": {"dni": "12345678", "nombre": "Maria", "apellido": "Quispe"},
		"datos_obstetricos": {}
	}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/patients", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var patients []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patients))
	assert.Len(t, patients, 0)
}

func TestAddVisitEndpoint(t *testing.T) {
	server := newTestServer(t)
	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/api/mucosa/registro", registerBody, nil).Code)

	rec := doJSON(t, server, http.MethodPost, "/api/mucosa/registro/12345678/visita", `{
		"datos_obstetricos": {"pulsaciones": 88},
		"nro_visita": 99
	}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	// The client-suggested number is ignored.
	assert.Equal(t, float64(2), decode(t, rec)["visit_number"])

	rec = doJSON(t, server, http.MethodPost, "/api/mucosa/registro/00000000/visita", `{"datos_obstetricos": {}}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func attachPhoto(t *testing.T, server http.Handler, dni, photoType, index, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("type", photoType))
	if index != "" {
		require.NoError(t, w.WriteField("index", index))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/mucosa/registro/%s/fotos", dni), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestAttachPhotoEndpoint(t *testing.T) {
	server := newTestServer(t)
	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/api/mucosa/registro", registerBody, nil).Code)

	content := []byte("fake jpeg bytes")
	rec := attachPhoto(t, server, "12345678", "CONJ", "", "IMG_0042.JPG", content)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "photos/12345678/12345678_Conjuntiva_1_1.jpg", decode(t, rec)["stored_as"])

	// Same slot again conflicts and the first photo survives.
	rec = attachPhoto(t, server, "12345678", "CONJ", "1", "other.jpg", []byte("other"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The ingested bytes are probeable by their digest.
	digest := sha256.Sum256(content)
	probe := doJSON(t, server, http.MethodHead, "/api/media/by-hash/"+hex.EncodeToString(digest[:]), "", nil)
	assert.Equal(t, http.StatusOK, probe.Code)

	missing := sha256.Sum256([]byte("never uploaded"))
	probe = doJSON(t, server, http.MethodHead, "/api/media/by-hash/"+hex.EncodeToString(missing[:]), "", nil)
	assert.Equal(t, http.StatusNotFound, probe.Code)
}

func TestAttachPhotoEndpointValidation(t *testing.T) {
	server := newTestServer(t)
	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/api/mucosa/registro", registerBody, nil).Code)

	// Unknown type tag
	rec := attachPhoto(t, server, "12345678", "SELFIE", "", "p.jpg", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing file part
	rec = doJSON(t, server, http.MethodPost, "/api/mucosa/registro/12345678/fotos", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown patient
	rec = attachPhoto(t, server, "00000000", "CONJ", "", "p.jpg", []byte("x"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVisitConditionalUpdate(t *testing.T) {
	server := newTestServer(t)
	created := decode(t, doJSON(t, server, http.MethodPost, "/api/mucosa/registro", registerBody, nil))
	visitID := created["visit_id"].(string)

	rec := doJSON(t, server, http.MethodGet, "/api/visits/"+visitID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"v1"`, rec.Header().Get("ETag"))

	// Stale token: rejected with 412.
	rec = doJSON(t, server, http.MethodPut, "/api/visits/"+visitID, `{"bpm": 150}`,
		map[string]string{"If-Match": `"v9"`})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	// Matching token: replaced and re-tagged.
	rec = doJSON(t, server, http.MethodPut, "/api/visits/"+visitID, `{"bpm": 90}`,
		map[string]string{"If-Match": `"v1"`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `"v2"`, rec.Header().Get("ETag"))
	body := decode(t, rec)
	assert.Equal(t, float64(90), body["bpm"])
	assert.Nil(t, body["hemoglobina"])
}

func TestVisitPutCreatesMissing(t *testing.T) {
	server := newTestServer(t)
	created := decode(t, doJSON(t, server, http.MethodPost, "/api/mucosa/registro", registerBody, nil))
	patientID := created["patient_id"].(string)

	id := "7b1f2a4c-0000-4e6e-9f2a-0d2f8b1c4e5a"
	rec := doJSON(t, server, http.MethodPut, "/api/visits/"+id,
		fmt.Sprintf(`{"patient": %q, "bpm": 78}`, patientID), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, float64(2), body["visit_number"])

	// Creating without an owning patient is a 400.
	rec = doJSON(t, server, http.MethodPut, "/api/visits/another-unknown-id", `{"bpm": 78}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatientEndpoints(t *testing.T) {
	server := newTestServer(t)
	created := decode(t, doJSON(t, server, http.MethodPost, "/api/mucosa/registro", registerBody, nil))
	patientID := created["patient_id"].(string)

	rec := doJSON(t, server, http.MethodGet, "/api/patients/"+patientID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345678", decode(t, rec)["dni"])

	rec = doJSON(t, server, http.MethodGet, "/api/patients", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Full replace of an existing patient.
	rec = doJSON(t, server, http.MethodPut, "/api/patients/"+patientID,
		`{"dni": "12345678", "nombre": "Rosa", "apellido": "Huaman", "edad": 31,
		  "region": "Puno", "provincia": "Puno", "distrito": "Juliaca", "direccion": "Jr. Union 45"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Rosa", decode(t, rec)["nombre"])

	// PUT to an unknown id creates.
	rec = doJSON(t, server, http.MethodPut, "/api/patients/3e1c9d6a-57f1-4f6e-9f2a-0d2f8b1c4e5a",
		`{"dni": "87654321", "nombre": "Ana", "apellido": "Flores", "edad": 22,
		  "region": "Cusco", "provincia": "Cusco", "distrito": "Wanchaq", "direccion": "Av. Tullumayo 300"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/patients/00000000-0000-0000-0000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListVisitPhotos(t *testing.T) {
	server := newTestServer(t)
	created := decode(t, doJSON(t, server, http.MethodPost, "/api/mucosa/registro", registerBody, nil))
	visitID := created["visit_id"].(string)

	require.Equal(t, http.StatusCreated, attachPhoto(t, server, "12345678", "CONJ", "", "a.jpg", []byte("a")).Code)
	require.Equal(t, http.StatusCreated, attachPhoto(t, server, "12345678", "LAB", "", "b.jpg", []byte("b")).Code)

	rec := doJSON(t, server, http.MethodGet, "/api/visits/"+visitID+"/photos", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var photos []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photos))
	assert.Len(t, photos, 2)
}
