package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/compass/internal/dedup"
	"github.com/MikeSquared-Agency/compass/internal/model"
	"github.com/MikeSquared-Agency/compass/internal/scoring"
)

type extractRequest struct {
	Module string `json:"module"`
	Text   string `json:"text"`
}

type mergeRequest struct {
	Existing   []string `json:"existing"`
	Candidates []string `json:"candidates"`
}

type alignmentRequest struct {
	Passions model.StringList `json:"passions"`
	Skills   model.SkillList  `json:"skills"`
}

type similarityProfile struct {
	Interests model.StringList `json:"interests"`
	Skills    model.StringList `json:"skills"`
}

type similarityRequest struct {
	A similarityProfile `json:"a"`
	B similarityProfile `json:"b"`
}

func (s *Server) computeExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cands := s.extractor.Extract(model.ParseModule(req.Module), req.Text)
	if cands == nil {
		cands = []model.Candidate{}
	}
	writeJSON(w, http.StatusOK, cands)
}

func (s *Server) computeMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, dedup.Merge(req.Existing, req.Candidates))
}

func (s *Server) computeAlignment(w http.ResponseWriter, r *http.Request) {
	var req alignmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, scoring.ComputeAlignment(req.Passions, req.Skills))
}

func (s *Server) computeSimilarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, scoring.Similarity(req.A.Interests, req.A.Skills, req.B.Interests, req.B.Skills))
}
