package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Quadco-Consults/Saharam-express-sub001/internal/http/middleware"
)

type verifyTicketRequest struct {
	QRCodeData string `json:"qrCodeData" binding:"required"`
	TripID     int64  `json:"tripId"`
}

// POST /api/tickets/verify (staff/admin gate scan)
func (h Handlers) VerifyTicket(c *gin.Context) {
	var req verifyTicketRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := h.Tickets
	svc.RequestID = middleware.GetRequestID(c)

	result, err := svc.Verify(req.QRCodeData, req.TripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/tickets/:reference/qr
func (h Handlers) TicketQRImage(c *gin.Context) {
	png, err := h.Tickets.QRImage(c.Param("reference"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// GET /api/tickets/:reference/pdf
func (h Handlers) TicketPDF(c *gin.Context) {
	svc := h.Docs
	svc.RequestID = middleware.GetRequestID(c)

	pdf, filename, err := svc.GenerateETicket(c.Param("reference"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
