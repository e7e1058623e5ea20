package greenentries

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kontax/portal-backend/internal/ledger"
	"kontax/portal-backend/internal/rcv"
)

func newRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(f.service, zap.NewNop()).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func perform(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "auditor-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateCompany(t *testing.T) {
	f := newFixture(t)
	f.repo.On("CreateCompany", mock.Anything, mock.Anything).Return(nil)
	router := newRouter(f)

	w := perform(router, http.MethodPost, "/api/v1/companies", gin.H{
		"rut":           "76.543.210-3",
		"business_name": "Viña Sur SpA",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var company ledger.Company
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &company))
	assert.Equal(t, "Viña Sur SpA", company.BusinessName)
}

func TestHandler_CreateCompany_Validation(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	w := perform(router, http.MethodPost, "/api/v1/companies", gin.H{"rut": "76.543.210-3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.repo.AssertNotCalled(t, "CreateCompany", mock.Anything, mock.Anything)
}

func TestHandler_ListCompanies_ByAuditor(t *testing.T) {
	f := newFixture(t)
	auditor := "auditor-1"
	f.repo.On("ListCompanies", mock.Anything, &auditor).Return([]ledger.Company{{ID: uuid.New()}}, nil)
	router := newRouter(f)

	w := perform(router, http.MethodGet, "/api/v1/companies", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var companies []ledger.Company
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &companies))
	assert.Len(t, companies, 1)
}

func TestHandler_Generate_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(f *fixture, id uuid.UUID)
		status int
	}{
		{
			name: "unknown company",
			setup: func(f *fixture, id uuid.UUID) {
				f.repo.On("GetCompany", mock.Anything, id).Return(nil, ledger.ErrNotFound)
			},
			status: http.StatusNotFound,
		},
		{
			name: "not linked",
			setup: func(f *fixture, id uuid.UUID) {
				f.repo.On("GetCompany", mock.Anything, id).Return(&ledger.Company{ID: id}, nil)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "no data",
			setup: func(f *fixture, id uuid.UUID) {
				f.repo.On("GetCompany", mock.Anything, id).Return(&ledger.Company{ID: id, SIILinked: true}, nil)
				f.store.On("LatestSnapshot", mock.Anything, id).Return(nil, rcv.ErrNoSnapshot)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "generated",
			setup: func(f *fixture, id uuid.UUID) {
				f.repo.On("GetCompany", mock.Anything, id).Return(&ledger.Company{ID: id, SIILinked: true}, nil)
				f.store.On("LatestSnapshot", mock.Anything, id).
					Return(&rcv.Snapshot{CompanyID: id, Extraction: electricityExtraction()}, nil)
				f.repo.On("CreateEntries", mock.Anything, mock.Anything).Return(nil)
			},
			status: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := uuid.New()
			tt.setup(f, id)
			router := newRouter(f)

			w := perform(router, http.MethodPost, "/api/v1/companies/"+id.String()+"/green-entries/generate", nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandler_Generate_InvalidID(t *testing.T) {
	router := newRouter(newFixture(t))

	w := perform(router, http.MethodPost, "/api/v1/companies/not-a-uuid/green-entries/generate", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Analytics(t *testing.T) {
	f := newFixture(t)
	company := linkedCompany()
	f.repo.On("GetCompany", mock.Anything, company.ID).Return(company, nil)
	f.repo.On("ListEntries", mock.Anything, mock.Anything).Return([]ledger.GreenEntry{}, nil)
	router := newRouter(f)

	w := perform(router, http.MethodGet, "/api/v1/companies/"+company.ID.String()+"/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 0, body["green_score"])
}

func TestHandler_Export(t *testing.T) {
	f := newFixture(t)
	company := linkedCompany()
	f.repo.On("GetCompany", mock.Anything, company.ID).Return(company, nil)
	f.repo.On("ListEntries", mock.Anything, mock.Anything).Return([]ledger.GreenEntry{}, nil)
	router := newRouter(f)

	w := perform(router, http.MethodGet, "/api/v1/companies/"+company.ID.String()+"/green-entries/export?format=csv&period=2024-03", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "libro-verde-2024-03.csv")

	w = perform(router, http.MethodGet, "/api/v1/companies/"+company.ID.String()+"/green-entries/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_UpdateEntryStatus(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	reviewer := "auditor-1"
	f.repo.On("UpdateEntryStatus", mock.Anything, id, ledger.EntryStatusVerified, &reviewer).Return(nil)
	router := newRouter(f)

	w := perform(router, http.MethodPatch, "/api/v1/green-entries/"+id.String()+"/status", gin.H{"status": "verificado"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodPatch, "/api/v1/green-entries/"+id.String()+"/status", gin.H{"status": "aprobado"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	missing := uuid.New()
	f.repo.On("UpdateEntryStatus", mock.Anything, missing, ledger.EntryStatusPending, &reviewer).Return(ledger.ErrNotFound)
	w = perform(router, http.MethodPatch, "/api/v1/green-entries/"+missing.String()+"/status", gin.H{"status": "pendiente"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
