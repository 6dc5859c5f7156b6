package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/healthdot/registry/internal/common"
	"github.com/healthdot/registry/internal/server/auth"
)

// writeError maps a service error to its HTTP status. Sentinels are matched
// with errors.Is so wrapped errors map the same way.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrTokenNotFound),
		errors.Is(err, common.ErrRecordNotFound),
		errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrTokenExists):
		status = http.StatusConflict
	case errors.Is(err, common.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrInvalidRecipient),
		errors.Is(err, common.ErrInvalidOperator),
		errors.Is(err, common.ErrRecordFinalized):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, errorResponse{Error: "internal error"})
		return
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

// createSession exchanges the registrar secret for a signed session token
// carrying the requested account.
func (s *HTTPServer) createSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.RegistrarSecret), []byte(s.config.RegistrarSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "bad registrar secret"})
		return
	}

	token, err := auth.GenerateToken(req.Account, []byte(s.config.SecretKey), s.config.SessionTokenValidityDuration)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{AccessToken: token})
}

func (s *HTTPServer) mint(c *gin.Context) {
	var req mintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.registry.Mint(c.Request.Context(), caller(c), req.TokenID, req.DataRef); err != nil {
		s.writeError(c, err)
		return
	}

	t, err := s.registry.Token(c.Request.Context(), req.TokenID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTokenResponse(t))
}

func (s *HTTPServer) transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.registry.Transfer(c.Request.Context(), caller(c), req.From, req.To, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) approve(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.registry.Approve(c.Request.Context(), caller(c), c.Param("id"), req.Delegate); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) setOperator(c *gin.Context) {
	var req operatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.registry.SetApprovalForAll(c.Request.Context(), caller(c), c.Param("operator"), *req.Approved); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) getToken(c *gin.Context) {
	t, err := s.registry.Token(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokenResponse(t))
}

// listTokens returns all tokens, or only one owner's with ?owner=acct.
func (s *HTTPServer) listTokens(c *gin.Context) {
	tokens, err := s.registry.ListTokens(c.Request.Context(), c.Query("owner"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		resp = append(resp, toTokenResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) getApproved(c *gin.Context) {
	tokenID := c.Param("id")
	delegate, err := s.registry.GetApproved(c.Request.Context(), tokenID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, approvedResponse{TokenID: tokenID, Delegate: delegate})
}

func (s *HTTPServer) balanceOf(c *gin.Context) {
	account := c.Param("account")
	balance, err := s.registry.BalanceOf(c.Request.Context(), account)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, balanceResponse{Account: account, Balance: balance})
}

func (s *HTTPServer) isOperator(c *gin.Context) {
	owner := c.Param("account")
	operator := c.Param("operator")
	approved, err := s.registry.IsApprovedForAll(c.Request.Context(), owner, operator)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, operatorResponse{Owner: owner, Operator: operator, Approved: approved})
}

// listEvents returns committed events after ?after=seq, up to ?limit.
func (s *HTTPServer) listEvents(c *gin.Context) {
	after, err := strconv.ParseInt(c.DefaultQuery("after", "0"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad after parameter"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad limit parameter"})
		return
	}

	events, err := s.registry.Events(c.Request.Context(), after, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) createRecord(c *gin.Context) {
	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	rec, putURL, err := s.records.CreateUpload(c.Request.Context(), caller(c), req.Patient, req.Kind, req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createRecordResponse{Record: toRecordResponse(rec), PutURL: putURL})
}

func (s *HTTPServer) finalizeRecord(c *gin.Context) {
	var req finalizeRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.records.Finalize(c.Request.Context(), caller(c), c.Param("id"), req.DigestHex); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) getRecord(c *gin.Context) {
	rec, err := s.records.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecordResponse(rec))
}

func (s *HTTPServer) listRecords(c *gin.Context) {
	recs, err := s.records.ListByPatient(c.Request.Context(), caller(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]recordResponse, 0, len(recs))
	for _, r := range recs {
		resp = append(resp, toRecordResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) downloadRecord(c *gin.Context) {
	url, err := s.records.DownloadURL(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, downloadResponse{GetURL: url})
}
