package api

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/mr1hm/go-carbon-tracker/internal/analysis"
	"github.com/mr1hm/go-carbon-tracker/internal/emissions"
	"github.com/mr1hm/go-carbon-tracker/internal/events"
	"github.com/mr1hm/go-carbon-tracker/internal/ingestion"
	"github.com/mr1hm/go-carbon-tracker/internal/models"
	"github.com/mr1hm/go-carbon-tracker/internal/repository"
)

const maxTopK = 100

type Handler struct {
	repo        repository.DatasetRepository
	broadcaster *events.Broadcaster
	factors     emissions.FactorTable
	defaultTopK int
}

// NewHandler serves analysis over repo. broadcaster may be nil, which
// disables the event stream.
func NewHandler(repo repository.DatasetRepository, broadcaster *events.Broadcaster, factors emissions.FactorTable, defaultTopK int) *Handler {
	if factors == nil {
		factors = emissions.DefaultFactors()
	}
	if defaultTopK < 1 {
		defaultTopK = 5
	}
	return &Handler{
		repo:        repo,
		broadcaster: broadcaster,
		factors:     factors,
		defaultTopK: defaultTopK,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/summary", h.getSummary)
	api.GET("/shipments", h.getShipments)
	api.GET("/shipments/:id", h.getShipment)
	api.GET("/shipments/:id/alternatives", h.getAlternatives)
	api.GET("/suppliers/aggregates", h.getAggregates)
	api.GET("/suppliers/geojson", h.getSuppliersGeoJSON)
	api.GET("/graph", h.getGraph)
	api.GET("/risk", h.getRisk)
	api.POST("/datasets", h.uploadDataset)
	api.GET("/events", h.streamEvents)
}

// report runs the analysis pipeline over the stored dataset. A "factors"
// query parameter (e.g. road=0.05,air=0.5) overrides the configured table
// for this request only.
func (h *Handler) report(c *gin.Context) (*analysis.Report, bool) {
	factors, ok := h.factorsFor(c)
	if !ok {
		return nil, false
	}

	ctx := c.Request.Context()
	suppliers, err := h.repo.ListSuppliers(ctx)
	if err != nil {
		slog.Error("error listing suppliers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch suppliers"})
		return nil, false
	}
	shipments, err := h.repo.ListShipments(ctx)
	if err != nil {
		slog.Error("error listing shipments", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch shipments"})
		return nil, false
	}

	return analysis.Run(suppliers, shipments, factors), true
}

// factorsFor returns the configured factor table, or the override given in
// the "factors" query parameter (e.g. road=0.05,air=0.5).
func (h *Handler) factorsFor(c *gin.Context) (emissions.FactorTable, bool) {
	f := c.Query("factors")
	if f == "" {
		return h.factors, true
	}
	parsed, err := emissions.ParseFactors(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return parsed, true
}

func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.broadcaster != nil {
		if e, ok := h.broadcaster.Latest(); ok {
			resp["dataset_revision"] = e.Revision
		}
		resp["stream_subscribers"] = h.broadcaster.SubscriberCount()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getSummary(c *gin.Context) {
	r, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toSummaryJSON(r.Summary))
}

// getShipment looks a single shipment up in the store without running the
// full analysis.
func (h *Handler) getShipment(c *gin.Context) {
	factors, ok := h.factorsFor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	s, err := h.repo.GetShipment(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "shipment not found", "id": id})
		return
	}
	if err != nil {
		slog.Error("error fetching shipment", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch shipment"})
		return
	}

	enriched := emissions.Compute([]models.Shipment{*s}, factors)
	c.JSON(http.StatusOK, toShipmentJSON(enriched[0]))
}

func (h *Handler) getShipments(c *gin.Context) {
	r, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toShipmentsJSON(r.Enriched))
}

func (h *Handler) getAggregates(c *gin.Context) {
	r, ok := h.report(c)
	if !ok {
		return
	}

	aggs := r.Aggregates
	if t := c.Query("top"); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top must be a positive integer"})
			return
		}
		aggs = r.TopEmitters(n)
	}
	c.JSON(http.StatusOK, toAggregatesJSON(aggs))
}

func (h *Handler) getGraph(c *gin.Context) {
	r, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toGraphJSON(r.Graph))
}

func (h *Handler) getRisk(c *gin.Context) {
	r, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toRiskJSON(r.Risk))
}

func (h *Handler) getSuppliersGeoJSON(c *gin.Context) {
	r, ok := h.report(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(r.Suppliers, r.Risk))
}

func (h *Handler) getAlternatives(c *gin.Context) {
	topK := h.defaultTopK
	if k := c.Query("top_k"); k != "" {
		n, err := strconv.Atoi(k)
		if err != nil || n < 1 || n > maxTopK {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top_k must be between 1 and 100"})
			return
		}
		topK = n
	}

	r, ok := h.report(c)
	if !ok {
		return
	}

	id := c.Param("id")
	alts, err := r.Alternatives(id, topK)
	if errors.Is(err, analysis.ErrShipmentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "shipment not found", "id": id})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rank alternatives"})
		return
	}

	target, _ := r.Shipment(id)
	c.JSON(http.StatusOK, alternativesResponse{
		Shipment:     toShipmentJSON(target),
		Alternatives: toAlternativesJSON(alts),
	})
}

func (h *Handler) uploadDataset(c *gin.Context) {
	suppliersFile, err := c.FormFile("suppliers")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing suppliers file"})
		return
	}
	shipmentsFile, err := c.FormFile("shipments")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing shipments file"})
		return
	}

	suppliers, err := decodeUpload(suppliersFile, ingestion.DecodeSuppliers)
	if err != nil {
		writeDecodeError(c, err)
		return
	}
	shipments, err := decodeUpload(shipmentsFile, ingestion.DecodeShipments)
	if err != nil {
		writeDecodeError(c, err)
		return
	}

	if err := h.repo.ReplaceDataset(c.Request.Context(), suppliers, shipments); err != nil {
		slog.Error("error replacing dataset", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store dataset"})
		return
	}

	orphans := ingestion.CountOrphans(suppliers, shipments)
	unknownModes := ingestion.CountUnknownModes(shipments)
	slog.Info("dataset uploaded", "suppliers", len(suppliers), "shipments", len(shipments),
		"orphans", orphans, "unknown_modes", unknownModes)

	resp := gin.H{
		"suppliers":         len(suppliers),
		"shipments":         len(shipments),
		"unknown_suppliers": orphans,
		"unknown_modes":     unknownModes,
	}
	if h.broadcaster != nil {
		e := h.broadcaster.Publish(events.DatasetEvent{
			Source:    "upload",
			Suppliers: len(suppliers),
			Shipments: len(shipments),
			At:        time.Now().UTC(),
		})
		resp["revision"] = e.Revision
	}
	c.JSON(http.StatusOK, resp)
}

// streamEvents pushes a server-sent "dataset" event whenever the stored
// dataset is replaced, so dashboards know to refetch. The stream opens with the
// current revision; the event id is the revision number.
func (h *Handler) streamEvents(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream disabled"})
		return
	}

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			c.Render(-1, sse.Event{
				Id:    strconv.FormatUint(e.Revision, 10),
				Event: "dataset",
				Data:  e,
			})
			c.Writer.Flush()
		}
	}
}

func decodeUpload[T any](fh *multipart.FileHeader, decode func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decode(f)
}

func writeDecodeError(c *gin.Context, err error) {
	var rowErr *ingestion.RowError
	if errors.As(err, &rowErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "malformed record",
			"table": rowErr.Table,
			"line":  rowErr.Line,
			"field": rowErr.Field,
			"cause": rowErr.Err.Error(),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
