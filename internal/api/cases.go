package api

import (
	"net/http"
	"strconv"

	"kycflow/internal/errs"
	"kycflow/internal/model"
	"kycflow/internal/schema"

	"github.com/go-chi/chi/v5"
)

type CreateCaseRequest struct {
	DocumentType model.DocumentType `json:"documentType"`
	Images       []string           `json:"images"`
}

type ListCasesRequest struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	SortBy string `json:"sortBy"`
	Order  string `json:"order"`
}

func (req ListCasesRequest) params() model.ListParams {
	return model.ListParams{
		Page:    req.Page,
		Limit:   req.Limit,
		SortKey: model.SortKey(req.SortBy),
		SortDir: model.SortDir(req.Order),
	}
}

type UpdateStatusRequest struct {
	KycID   string       `json:"kycId"`
	Status  model.Status `json:"status"`
	Message *string      `json:"message,omitempty"`
}

func (d Dependencies) createCase(w http.ResponseWriter, r *http.Request) {
	actor, ok := d.require(w, r, model.PermissionSubmitKYC)
	if !ok {
		return
	}
	var req CreateCaseRequest
	if !d.decode(w, r, schema.CreateCase, &req) {
		return
	}

	c, err := d.Cases.CreateCase(r.Context(), actor.ID, req.DocumentType, req.Images)
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "KYC request created successfully",
		"data":    c,
	})
}

func (d Dependencies) getCase(w http.ResponseWriter, r *http.Request) {
	actor, ok := d.caller(w, r)
	if !ok {
		return
	}
	c, err := d.Cases.GetCase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}
	if !canSee(actor, c) {
		WriteError(w, errs.New(errs.CodePermissionDenied, "User cannot view this KYC Request"), d.Log)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": c})
}

func (d Dependencies) myCaseCounts(w http.ResponseWriter, r *http.Request) {
	actor, ok := d.caller(w, r)
	if !ok {
		return
	}
	out, err := d.Cases.GetCaseCountsAndList(r.Context(), actor.ID)
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (d Dependencies) listMyCases(w http.ResponseWriter, r *http.Request) {
	actor, ok := d.require(w, r, model.PermissionSubmitKYC)
	if !ok {
		return
	}
	var req ListCasesRequest
	if !d.decode(w, r, schema.ListCases, &req) {
		return
	}
	page, err := d.Cases.ListCasesForApplicant(r.Context(), actor.ID, req.params())
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (d Dependencies) listAllCases(w http.ResponseWriter, r *http.Request) {
	if _, ok := d.require(w, r, model.PermissionViewKYC); !ok {
		return
	}
	var req ListCasesRequest
	if !d.decode(w, r, schema.ListCases, &req) {
		return
	}
	page, err := d.Cases.ListAllCases(r.Context(), req.params())
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": page})
}

func (d Dependencies) caseCounts(w http.ResponseWriter, r *http.Request) {
	if _, ok := d.require(w, r, model.PermissionViewKYC); !ok {
		return
	}
	counts, err := d.Cases.CountAll(r.Context())
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"counts": counts})
}

func (d Dependencies) verifyCase(w http.ResponseWriter, r *http.Request) {
	if _, ok := d.require(w, r, model.PermissionVerifyKYC); !ok {
		return
	}
	caseID := chi.URLParam(r, "id")

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if err := d.Verification.VerifyAsync(r.Context(), caseID); err != nil {
			WriteError(w, err, d.Log)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"message": "Verification queued",
			"kycId":   caseID,
		})
		return
	}

	verdict, err := d.Verification.Verify(r.Context(), caseID)
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

func (d Dependencies) updateCaseStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := d.require(w, r, model.PermissionVerifyKYC); !ok {
		return
	}
	var req UpdateStatusRequest
	if !d.decode(w, r, schema.UpdateStatus, &req) {
		return
	}
	c, err := d.Cases.UpdateCaseStatus(r.Context(), req.KycID, req.Status, req.Message)
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Case updated successfully",
		"data":    c,
	})
}
