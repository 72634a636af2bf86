package api

import (
	"fmt"
	"io"
	"net/http"

	"kycflow/internal/errs"
	"kycflow/internal/model"
	"kycflow/internal/schema"
	"kycflow/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SignUploadsRequest struct {
	Files []struct {
		FileName    string `json:"fileName"`
		ContentType string `json:"contentType"`
		Size        int64  `json:"size"`
	} `json:"files"`
}

type SignedUpload struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}

// signUploads presigns one PUT per image; fileName in the reply is the
// object key to pass back as a case image.
func (d Dependencies) signUploads(w http.ResponseWriter, r *http.Request) {
	actor, ok := d.require(w, r, model.PermissionSubmitKYC)
	if !ok {
		return
	}
	var req SignUploadsRequest
	if !d.decode(w, r, schema.SignUpload, &req) {
		return
	}

	out := make([]SignedUpload, 0, len(req.Files))
	for _, f := range req.Files {
		if err := storage.ImagePolicy.ValidateFile(f.FileName, f.ContentType, f.Size); err != nil {
			WriteError(w, errs.Wrap(err, errs.CodeInvalidInput, err.Error()), d.Log)
			return
		}
		key := storage.UploadKey(actor.ID, f.FileName)
		url, err := d.Storage.PresignPut(r.Context(), key, f.ContentType)
		if err != nil {
			WriteError(w, errs.External(err, "Could not generate presigned URL"), d.Log)
			return
		}
		out = append(out, SignedUpload{FileName: key, URL: url})
	}

	writeJSON(w, http.StatusOK, out)
}

// downloadCertificate renders the decision certificate and streams the PDF
func (d Dependencies) downloadCertificate(w http.ResponseWriter, r *http.Request) {
	actor, ok := d.caller(w, r)
	if !ok {
		return
	}
	caseID := chi.URLParam(r, "id")

	c, err := d.Cases.GetCase(r.Context(), caseID)
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}
	if !canSee(actor, c) {
		WriteError(w, errs.New(errs.CodePermissionDenied, "User cannot view this KYC Request"), d.Log)
		return
	}

	cert, err := d.Certificates.RenderCertificate(r.Context(), caseID)
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}

	body, err := d.PDFs.Fetch(r.Context(), cert.PDFURL)
	if err != nil {
		WriteError(w, errs.External(err, "Failed to Generate pdf"), d.Log)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=KYC_Report_%s.pdf", caseID))
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		d.Log.Warn("Certificate download interrupted", zap.String("case_id", caseID), zap.Error(err))
	}
}
