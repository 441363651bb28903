package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saskaita/invoice-pipeline/constants"
	"github.com/saskaita/invoice-pipeline/internal/common"
	"github.com/saskaita/invoice-pipeline/internal/entity"
	"github.com/saskaita/invoice-pipeline/internal/llm"
	"github.com/saskaita/invoice-pipeline/internal/pipeline"
)

func (s *Server) processInvoice(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failas nerastas"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sisteminė klaida apdorojant sąskaitą"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sisteminė klaida apdorojant sąskaitą"})
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	result, err := s.pipe.Process(c.Request.Context(), fh.Filename, mimeType, data)
	if err != nil {
		var parseErr *pipeline.UpstreamParseError
		var appErr *common.AppError
		switch {
		case errors.As(err, &parseErr):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":       "Nepavyko apdoroti AI atsakymo",
				"details":     parseErr.Unwrap().Error(),
				"rawResponse": parseErr.RawExcerpt,
			})
		case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrConversion):
			msg := "Netinkamas failas"
			if errors.As(err, &appErr) {
				msg = appErr.Message
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		default:
			s.logger.Error("process_invoice.failed", "file", fh.Filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Sisteminė klaida apdorojant sąskaitą"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ocrCoordinates re-locates a single reviewed field on the uploaded document
// and returns one percentage box for the review UI to highlight.
func (s *Server) ocrCoordinates(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failas nerastas"})
		return
	}
	fieldName := c.PostForm("fieldName")
	fieldValue := c.PostForm("fieldValue")
	if fieldName == "" || fieldValue == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Trūksta reikalingų duomenų"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sisteminė klaida apdorojant sąskaitą"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sisteminė klaida apdorojant sąskaitą"})
		return
	}

	box, err := s.pipe.LocateField(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), data, fieldName, fieldValue)
	if err != nil {
		var appErr *common.AppError
		switch {
		case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrConversion):
			msg := "Netinkamas failas"
			if errors.As(err, &appErr) {
				msg = appErr.Message
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		case errors.Is(err, common.ErrUpstreamParse):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Nepavyko apdoroti AI atsakymo"})
		default:
			s.logger.Error("ocr_coordinates.failed", "file", fh.Filename, "field", fieldName, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Sisteminė klaida apdorojant sąskaitą"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "coordinates": box})
}

type confirmDocumentRequest struct {
	OriginalName  string          `json:"originalName"`
	FileType      string          `json:"fileType"`
	CompressedURL string          `json:"compressedUrl"`
	OriginalURL   string          `json:"originalUrl"`
	ExtractedData json.RawMessage `json:"extractedData"`
	Coordinates   json.RawMessage `json:"coordinates"`
}

func (s *Server) confirmDocument(c *gin.Context) {
	var req confirmDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Trūksta reikalingų duomenų"})
		return
	}
	if req.OriginalName == "" || len(req.ExtractedData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Trūksta reikalingų duomenų"})
		return
	}
	if len(req.Coordinates) == 0 {
		req.Coordinates = json.RawMessage("{}")
	}

	sellerCode, invoiceNumber := denormalizeDuplicateKey(req.ExtractedData)
	doc := &entity.ProcessedDocument{
		UserID:        userID(c),
		OriginalName:  req.OriginalName,
		FileType:      req.FileType,
		CompressedURL: req.CompressedURL,
		OriginalURL:   req.OriginalURL,
		ExtractedData: req.ExtractedData,
		Coordinates:   req.Coordinates,
		Status:        constants.DocStatusConfirmed,
		SellerCode:    sellerCode,
		InvoiceNumber: invoiceNumber,
	}
	if err := s.docs.Create(c.Request.Context(), doc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Nepavyko išsaugoti dokumento"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": doc.ID})
}

// denormalizeDuplicateKey lifts (seller code, series/number) out of the
// extracted JSON so the duplicate advisory can query them. Sentinel values are
// stored blank so two unreadable invoices never match each other.
func denormalizeDuplicateKey(extracted json.RawMessage) (sellerCode, invoiceNumber string) {
	var fields llm.InvoiceFields
	if err := json.Unmarshal(extracted, &fields); err != nil {
		return "", ""
	}
	if fields.Pardavejas != nil && fields.Pardavejas.ImonesKodas != constants.NotFoundSentinel {
		sellerCode = fields.Pardavejas.ImonesKodas
	}
	if fields.SerijaIrNumeris != constants.NotFoundSentinel {
		invoiceNumber = fields.SerijaIrNumeris
	}
	return sellerCode, invoiceNumber
}

type checkDuplicateRequest struct {
	SellerCode    string `json:"sellerCode"`
	InvoiceNumber string `json:"invoiceNumber"`
}

func (s *Server) checkDuplicate(c *gin.Context) {
	var req checkDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Trūksta reikalingų duomenų"})
		return
	}
	// An unreadable key can never identify a duplicate.
	if req.SellerCode == "" || req.InvoiceNumber == "" ||
		req.SellerCode == constants.NotFoundSentinel || req.InvoiceNumber == constants.NotFoundSentinel {
		c.JSON(http.StatusOK, gin.H{"isDuplicate": false})
		return
	}

	doc, err := s.docs.FindDuplicate(c.Request.Context(), userID(c), req.SellerCode, req.InvoiceNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Nepavyko patikrinti dublikatų"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusOK, gin.H{"isDuplicate": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"isDuplicate": true,
		"duplicateInvoice": gin.H{
			"id":           doc.ID,
			"originalName": doc.OriginalName,
			"createdAt":    doc.CreatedAt.Format(time.RFC3339),
		},
	})
}

func (s *Server) listDocuments(c *gin.Context) {
	docs, err := s.docs.List(c.Request.Context(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Nepavyko gauti dokumentų"})
		return
	}
	if docs == nil {
		docs = []*entity.ProcessedDocument{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (s *Server) getDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Netinkamas dokumento ID"})
		return
	}
	doc, err := s.docs.GetByID(c.Request.Context(), userID(c), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dokumentas nerastas"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Nepavyko gauti dokumento"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) deleteDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Netinkamas dokumento ID"})
		return
	}
	if err := s.docs.Delete(c.Request.Context(), userID(c), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dokumentas nerastas"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Nepavyko ištrinti dokumento"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) exportInvoices(c *gin.Context) {
	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Netinkama data 'from'"})
		return
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Netinkama data 'to'"})
		return
	}

	data, err := s.exporter.ExportInvoicesXLSX(c.Request.Context(), userID(c), from, to)
	if err != nil {
		s.logger.Error("export.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Nepavyko sugeneruoti eksporto"})
		return
	}

	filename := fmt.Sprintf("saskaitos_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseDateParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
