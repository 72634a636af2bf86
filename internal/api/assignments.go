package api

import (
	"net/http"

	"kycflow/internal/model"
	"kycflow/internal/schema"
)

type AssignCaseRequest struct {
	WorkerID string `json:"workerId"`
	KycID    string `json:"kycId"`
}

// assignCase binds a worker to a case; the caller is the supervisor
func (d Dependencies) assignCase(w http.ResponseWriter, r *http.Request) {
	supervisor, ok := d.caller(w, r)
	if !ok {
		return
	}
	var req AssignCaseRequest
	if !d.decode(w, r, schema.AssignCase, &req) {
		return
	}

	c, err := d.Assignments.Assign(r.Context(), supervisor.ID, req.WorkerID, req.KycID)
	if err != nil {
		WriteError(w, err, d.Log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Case assigned successfully",
		"data":    toAssigned(c),
	})
}

type assignedCase struct {
	ID         string       `json:"id"`
	Status     model.Status `json:"status"`
	AssignerID *string      `json:"assignerId"`
	WorkerID   *string      `json:"workerId"`
}

func toAssigned(c model.Case) assignedCase {
	return assignedCase{ID: c.ID, Status: c.Status, AssignerID: c.AssignerID, WorkerID: c.WorkerID}
}
