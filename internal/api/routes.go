package api

import (
	"context"
	"io"
	"net/http"

	"kycflow/internal/auth"
	"kycflow/internal/errs"
	"kycflow/internal/model"
	"kycflow/internal/schema"
	"kycflow/internal/service"
	"kycflow/internal/storage"
	"kycflow/internal/ws"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PDFFetcher downloads a rendered certificate
type PDFFetcher interface {
	Fetch(ctx context.Context, pdfURL string) (io.ReadCloser, error)
}

type Dependencies struct {
	Cases        *service.CaseService
	Assignments  *service.AssignmentService
	Verification *service.VerificationService
	Certificates *service.CertificateService
	Permissions  *service.PermissionService
	Storage      storage.Storage
	PDFs         PDFFetcher
	Schemas      *schema.Compiler
	Hub          *ws.Hub
	JWT          *auth.JWTConfig
	Log          *zap.Logger
}

func Routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	// Add request logging middleware
	r.Use(RequestLogger(d.Log))
	r.Use(d.JWT.Middleware)

	// WebSocket endpoint authenticates its own handshake
	if d.Hub != nil {
		d.Hub.SetAuthorizer(d.authorizeChannel)
	}
	r.Get("/ws", d.wsHandler)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireActor)

		// Case endpoints
		r.Post("/cases", d.createCase)
		r.Get("/cases/mine/counts", d.myCaseCounts)
		r.Post("/cases/mine", d.listMyCases)
		r.Post("/cases/list", d.listAllCases)
		r.Get("/cases/counts", d.caseCounts)
		r.Post("/cases/assign", d.assignCase)
		r.Post("/cases/status", d.updateCaseStatus)
		r.Get("/cases/{id}", d.getCase)
		r.Post("/cases/{id}/verify-ai", d.verifyCase)
		r.Get("/cases/{id}/certificate", d.downloadCertificate)

		// File endpoints
		r.Post("/uploads/sign", d.signUploads)
	})

	return r
}

// require resolves the caller and checks one permission
func (d Dependencies) require(w http.ResponseWriter, r *http.Request, permission model.Permission) (model.Actor, bool) {
	actor, err := d.Permissions.Require(r.Context(), auth.GetActorID(r.Context()), permission)
	if err != nil {
		WriteError(w, err, d.Log)
		return model.Actor{}, false
	}
	return actor, true
}

// caller resolves the caller without a permission check
func (d Dependencies) caller(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	actor, err := d.Permissions.Actor(r.Context(), auth.GetActorID(r.Context()))
	if err != nil {
		WriteError(w, err, d.Log)
		return model.Actor{}, false
	}
	return actor, true
}

// canSee admits the owning applicant and staff
func canSee(actor model.Actor, c model.Case) bool {
	return c.ApplicantID == actor.ID ||
		actor.Can(model.PermissionViewKYC) ||
		actor.Can(model.PermissionVerifyKYC) ||
		actor.Can(model.PermissionAssignKYC)
}

func (d Dependencies) decode(w http.ResponseWriter, r *http.Request, name string, out interface{}) bool {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		WriteError(w, errs.Wrap(err, errs.CodeInvalidInput, "Invalid request body"), d.Log)
		return false
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := d.Schemas.Decode(r.Context(), name, raw, out); err != nil {
		WriteError(w, errs.Wrap(err, errs.CodeInvalidInput, "Invalid request body: "+err.Error()), d.Log)
		return false
	}
	return true
}
