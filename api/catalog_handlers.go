package api

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tariff-duty/adapters/ingest"
	"tariff-duty/core/catalog"
	"tariff-duty/core/history"
	"tariff-duty/core/tariff"
	"tariff-duty/internal/errors"
)

// Sources lists public catalog data sources; none is fetched automatically
var Sources = []Source{
	{
		Name:        "TWS.by",
		URL:         "https://tws.by/tws/tnved/download",
		Type:        "Excel",
		Free:        true,
		Description: "Free daily updated EAEU tariff nomenclature",
	},
	{
		Name:        "Eurasian Economic Commission",
		URL:         "https://portal.eaeunion.org",
		Type:        "API",
		Description: "Official source, registration required",
	},
	{
		Name:        "TKS.ru API",
		URL:         "https://www.tks.ru/tnvedapi/",
		Type:        "API",
		Cost:        "from 3000 RUB/month",
		Description: "Commercial API with full code details",
	},
}

var sourceInstructions = []string{
	"Download the nomenclature from one of the sources",
	"Convert it to a JSON array of {code, name, keywords, category}",
	"Upload it with POST /api/tnved/load",
}

// handleLoad handles POST /api/tnved/load.
// Accepts a multipart "file" field with a .json name or a raw JSON body.
// ?mode=merge upserts instead of replacing the catalog.
func (s *Server) handleLoad(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	data, name, err := s.readUpload(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var report ingest.Report
	if c.Query("mode") == "merge" {
		report, err = ingest.Merge(s.opts.Store, bytes.NewReader(data))
	} else {
		report, err = ingest.Load(s.opts.Store, bytes.NewReader(data))
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.opts.History.Add(history.Item{
		Mode:    history.ModeFile,
		Preview: name,
		Result:  fmt.Sprintf("%d loaded, %d rejected", report.Accepted, report.Rejected),
	})

	s.writeJSON(c, LoadResponse{
		Success: true,
		Message: fmt.Sprintf("Loaded %d tariff codes", report.Accepted),
		Report:  report,
		Stats:   s.opts.Store.Stats(),
	}, http.StatusOK)
}

func (s *Server) readUpload(c *gin.Context) ([]byte, string, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, "", s.uploadError(err)
		}
		return data, "request body", nil
	}

	fh, err := c.FormFile("file")
	if err == http.ErrMissingFile {
		return nil, "", errors.Validation("file", "file was not uploaded")
	}
	if err != nil {
		return nil, "", s.uploadError(err)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".json") {
		return nil, "", errors.Validation("file", "only JSON files are supported")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", errors.Internal("failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", s.uploadError(err)
	}
	return data, fh.Filename, nil
}

func (s *Server) uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.Validation("file", fmt.Sprintf("upload exceeds %d bytes", s.opts.MaxUploadBytes))
	}
	return errors.Validation("file", "failed to read upload")
}

// handleClear handles DELETE /api/tnved/load
func (s *Server) handleClear(c *gin.Context) {
	s.opts.Store.Clear()
	c.Status(http.StatusNoContent)
}

// handleStats handles GET /api/tnved/stats
func (s *Server) handleStats(c *gin.Context) {
	s.writeJSON(c, s.opts.Store.Stats(), http.StatusOK)
}

// handleSearch handles GET /api/tnved/search
func (s *Server) handleSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		s.writeError(c, errors.Validation("q", "query parameter q (code or description) is required"))
		return
	}

	res := catalog.Lookup(s.opts.Store, q, s.opts.SearchLimit)
	s.opts.History.Add(history.Item{
		Mode:    history.ModeSearch,
		Preview: q,
		Result:  fmt.Sprintf("%s: %d results", res.Mode, len(res.Entries)),
		Codes:   res.Codes(),
	})

	s.writeJSON(c, SearchResponse{
		Query:   q,
		Mode:    res.Mode,
		Count:   len(res.Entries),
		Results: newCodeViews(res.Entries),
	}, http.StatusOK)
}

// handleCode handles GET /api/tnved/codes/:code
func (s *Server) handleCode(c *gin.Context) {
	code := c.Param("code")
	if !tariff.IsFullCode(code) {
		s.writeError(c, errors.Validation("code", "code must have exactly 10 digits"))
		return
	}
	e, ok := s.opts.Store.FindByCode(code)
	if !ok {
		s.writeError(c, errors.NotFound("tariff code", tariff.Format(code)))
		return
	}
	s.writeJSON(c, newCodeView(e), http.StatusOK)
}

// handleCategory handles GET /api/tnved/category
func (s *Server) handleCategory(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		s.writeError(c, errors.Validation("name", "query parameter name is required"))
		return
	}

	limit := s.opts.CategoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(c, errors.Validation("limit", "limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries := s.opts.Store.FindByCategory(name, limit)
	s.writeJSON(c, gin.H{
		"category": name,
		"count":    len(entries),
		"results":  newCodeViews(entries),
	}, http.StatusOK)
}

// handleExport handles GET /api/tnved/export
func (s *Server) handleExport(c *gin.Context) {
	entries := s.opts.Store.Export()
	s.writeJSON(c, newCodeViews(entries), http.StatusOK)
}

// handleExtract handles POST /api/tnved/extract
func (s *Server) handleExtract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.Parsing("invalid JSON body", err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(c, errors.Validation("text", "text is required"))
		return
	}

	resp := ExtractResponse{
		Codes:   tariff.Extract(req.Text, tariff.DefaultExtractLimit),
		Matches: []CodeView{},
		Missing: []string{},
	}
	for _, code := range resp.Codes {
		if e, ok := s.opts.Store.FindByCode(code); ok {
			resp.Matches = append(resp.Matches, newCodeView(e))
		} else {
			resp.Missing = append(resp.Missing, code)
		}
	}

	s.opts.History.Add(history.Item{
		Mode:    history.ModeText,
		Preview: preview(req.Text),
		Text:    req.Text,
		Result:  fmt.Sprintf("%d codes found, %d in catalog", len(resp.Codes), len(resp.Matches)),
		Codes:   resp.Codes,
	})

	s.writeJSON(c, resp, http.StatusOK)
}

// handleSources handles GET /api/tnved/sources
func (s *Server) handleSources(c *gin.Context) {
	s.writeJSON(c, SourcesResponse{
		Sources:      Sources,
		Instructions: sourceInstructions,
	}, http.StatusOK)
}

const previewRunes = 80

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= previewRunes {
		return text
	}
	return string(r[:previewRunes]) + "…"
}
