package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/icrp103-dose-server/internal/cache"
	"github.com/icrp103-dose-server/internal/domain"
)

// doseRequest is the wire payload of both dose computation endpoints.
type doseRequest struct {
	Irradiation []domain.IrradiationEntry `json:"irradiation"`
}

// neutronWRRequest is the wire payload of the neutron w_R lookup endpoint.
type neutronWRRequest struct {
	EnergyMeV *decimal.Decimal `json:"energy_MeV"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"timestamp":       time.Now().UTC(),
		"factors_version": s.factorVersion,
	})
}

// handleTissueFactors returns the ICRP 103 tissue weighting factors w_T.
func (s *Server) handleTissueFactors(c *gin.Context) {
	c.JSON(http.StatusOK, s.calculator.TissueFactors())
}

// handleRadiationFactors returns the base radiation weighting factors w_R
// for non-neutron kinds. Neutron values depend on energy; see the
// /v1/dose/convert/neutron-wr endpoint.
func (s *Server) handleRadiationFactors(c *gin.Context) {
	c.JSON(http.StatusOK, s.calculator.RadiationFactors())
}

// handleEffectiveDose computes per-tissue H_T and the whole-body effective
// dose E for the supplied irradiation scenario.
func (s *Server) handleEffectiveDose(c *gin.Context) {
	s.handleDose(c, "effective", func(entries []domain.IrradiationEntry) (interface{}, error) {
		return s.calculator.ComputeEffectiveDose(entries)
	})
}

// handleEquivalentDose computes per-tissue H_T with no tissue weighting.
func (s *Server) handleEquivalentDose(c *gin.Context) {
	s.handleDose(c, "equivalent", func(entries []domain.IrradiationEntry) (interface{}, error) {
		return s.calculator.ComputeEquivalentDose(entries)
	})
}

// handleDose is the shared request path of both dose endpoints: read body,
// consult the response cache, validate the boundary constraints, compute,
// serialize, and populate the cache.
func (s *Server) handleDose(c *gin.Context, mode string, compute func([]domain.IrradiationEntry) (interface{}, error)) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "failed to read request body")
		return
	}

	if s.cache != nil {
		key := cache.Key(mode, s.factorVersion, body)
		if payload, hit, cacheErr := s.cache.Get(c.Request.Context(), key); cacheErr == nil && hit {
			if s.metrics != nil {
				s.metrics.RecordCacheHit()
			}
			c.Data(http.StatusOK, "application/json", payload)
			return
		} else if cacheErr != nil {
			s.logger.WithError(cacheErr).Warn("Response cache read failed")
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	var req doseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "malformed JSON payload: "+err.Error())
		return
	}
	if len(req.Irradiation) == 0 {
		s.errorResponse(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "at least one irradiation entry is required")
		return
	}
	for i, entry := range req.Irradiation {
		if !entry.Radiation.IsValid() {
			s.errorResponse(c, http.StatusBadRequest, domain.ErrCodeInvalidInput,
				"entry "+strconv.Itoa(i)+": unknown radiation kind '"+string(entry.Radiation)+"'")
			return
		}
	}

	result, err := compute(req.Irradiation)
	if err != nil {
		s.computationError(c, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordComputation(mode)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, domain.ErrCodeInternalServer, "failed to serialize response")
		return
	}

	if s.cache != nil {
		key := cache.Key(mode, s.factorVersion, body)
		if cacheErr := s.cache.Set(c.Request.Context(), key, payload); cacheErr != nil {
			s.logger.WithError(cacheErr).Warn("Response cache write failed")
		}
	}

	c.Data(http.StatusOK, "application/json", payload)
}

// handleNeutronWR computes the neutron radiation weighting factor w_R from a
// neutron energy in MeV.
func (s *Server) handleNeutronWR(c *gin.Context) {
	var req neutronWRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "malformed JSON payload: "+err.Error())
		return
	}
	if req.EnergyMeV == nil {
		s.errorResponse(c, http.StatusBadRequest, domain.ErrCodeMissingParameter, "energy_MeV is required")
		return
	}

	wr, err := s.calculator.LookupNeutronWr(*req.EnergyMeV)
	if err != nil {
		s.computationError(c, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordNeutronLookup()
	}

	c.JSON(http.StatusOK, gin.H{"w_R": wr})
}

// computationError maps engine failures to transport status codes: the
// validation taxonomy becomes a client error, anything else a server error.
func (s *Server) computationError(c *gin.Context, err error) {
	code := domain.ErrCodeInternalServer
	status := http.StatusInternalServerError
	position := -1

	var unknownTissue *domain.UnknownTissueError
	var missing *domain.MissingParameterError
	var invalidEnergy *domain.InvalidEnergyError
	var invalidDose *domain.InvalidDoseError
	var integrity *domain.DataIntegrityError

	switch {
	case errors.As(err, &unknownTissue):
		code, status, position = domain.ErrCodeUnknownTissue, http.StatusBadRequest, unknownTissue.Position
	case errors.As(err, &missing):
		code, status, position = domain.ErrCodeMissingParameter, http.StatusBadRequest, missing.Position
	case errors.As(err, &invalidEnergy):
		code, status, position = domain.ErrCodeInvalidEnergy, http.StatusBadRequest, invalidEnergy.Position
	case errors.As(err, &invalidDose):
		code, status, position = domain.ErrCodeInvalidDose, http.StatusBadRequest, invalidDose.Position
	case errors.As(err, &integrity):
		code, status = domain.ErrCodeDataIntegrity, http.StatusInternalServerError
	}

	if s.metrics != nil {
		s.metrics.RecordComputationError(code)
	}
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("Dose computation failed")
	}

	resp := gin.H{
		"code":           code,
		"message":        err.Error(),
		"correlation_id": c.GetString("correlation_id"),
	}
	if position >= 0 {
		resp["position"] = position
	}
	c.JSON(status, resp)
}

// errorResponse writes a transport-level error without consulting the engine
// taxonomy.
func (s *Server) errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":           code,
		"message":        message,
		"correlation_id": c.GetString("correlation_id"),
	})
}
