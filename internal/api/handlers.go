package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel/attribute"

	"gamesales/internal/engine"
	"gamesales/internal/export"
	"gamesales/internal/models"
	"gamesales/internal/tracing"
)

const (
	defaultTopN      = 10
	defaultPageLimit = 50
	maxPageLimit     = 1000
)

// Loader runs dataset loads on behalf of the reload and upload endpoints.
type Loader interface {
	ResolveSource(uri string) (string, error)
	Reload(ctx context.Context, uri string) (*engine.Dataset, error)
	LoadBytes(ctx context.Context, name string, data []byte) (*engine.Dataset, error)
}

type Handler struct {
	store     *engine.Store
	loader    Loader
	logger    *slog.Logger
	maxUpload int64

	writeExport func(io.Writer, export.Format, []engine.Record, engine.Summary) error
}

func NewHandler(store *engine.Store, loader Loader, logger *slog.Logger, maxUpload int64) *Handler {
	return &Handler{
		store:       store,
		loader:      loader,
		logger:      logger,
		maxUpload:   maxUpload,
		writeExport: export.Write,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/sales/regions", h.GetRegionalSales)
	api.GET("/sales/:dimension", h.GetSalesBy)
	api.GET("/games/top", h.GetTopGames)
	api.GET("/games", h.GetGames)
	api.GET("/options", h.GetOptions)
	api.GET("/dataset", h.GetDataset)
	api.POST("/dataset/reload", h.ReloadDataset)
	api.POST("/dataset/upload", h.UploadDataset)
	api.GET("/export.:format", h.Export)

	e.GET("/healthz", h.Health)
}

// --- REQUESTS ---

type filterQuery struct {
	Year     string `query:"year" validate:"yearfilter"`
	Platform string `query:"platform" validate:"max=64"`
}

type salesQuery struct {
	Year     string `query:"year" validate:"yearfilter"`
	Platform string `query:"platform" validate:"max=64"`
	Sort     string `query:"sort" validate:"omitempty,oneof=value_desc value_asc key_asc chronological"`
	By       string `query:"by" validate:"omitempty,oneof=global na eu jp other"`
	Agg      string `query:"agg" validate:"omitempty,oneof=sum avg"`
}

type topQuery struct {
	Year     string `query:"year" validate:"yearfilter"`
	Platform string `query:"platform" validate:"max=64"`
	N        int    `query:"n" validate:"gte=0,lte=1000"`
	By       string `query:"by" validate:"omitempty,oneof=global na eu jp other"`
}

type gamesQuery struct {
	Year     string `query:"year" validate:"yearfilter"`
	Platform string `query:"platform" validate:"max=64"`
	Q        string `query:"q" validate:"max=200"`
	Sort     string `query:"sort" validate:"omitempty,oneof=rank name platform year genre publisher na_sales eu_sales jp_sales other_sales global_sales"`
	Desc     bool   `query:"desc"`
}

type reloadQuery struct {
	URI  string `query:"uri" validate:"max=2048"`
	Wait bool   `query:"wait"`
}

func bindQuery(c echo.Context, dst interface{}) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, dst); err != nil {
		return err
	}
	return c.Validate(dst)
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// window returns items[offset:offset+limit], clamped.
func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	return items[offset:min(offset+limit, len(items))]
}

// dataset returns the dataset being served, or the 503 explaining why there
// is none.
func (h *Handler) dataset() (*engine.Dataset, error) {
	st := h.store.Status()
	switch {
	case st.Current != nil:
		return st.Current, nil
	case st.LastError != nil:
		return nil, datasetUnavailable(st.LastError)
	}
	return nil, ErrDatasetLoading
}

// notModified sets the ETag for a response derived from ds and the given
// request parts, and reports whether the client already has it.
func notModified(c echo.Context, ds *engine.Dataset, parts ...string) bool {
	tag := fmt.Sprintf(`"%016x-%016x"`, ds.Fingerprint, xxh3.HashString(strings.Join(parts, "\x00")))
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set("ETag", tag)
	return c.Request().Header.Get("If-None-Match") == tag
}

// --- HANDLERS ---

// GetDashboard returns every aggregate the dashboard renders for one filter.
func (h *Handler) GetDashboard(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	var q filterQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	criteria := engine.Criteria{Year: q.Year, Platform: q.Platform}.Normalized()
	if notModified(c, ds, "dashboard", criteria.Year, strings.ToLower(criteria.Platform)) {
		return c.NoContent(http.StatusNotModified)
	}

	_, span := tracing.Tracer().Start(c.Request().Context(), "dashboard.aggregate")
	data := engine.Aggregate(ds.Records, criteria)
	span.SetAttributes(
		attribute.String("filter.year", criteria.Year),
		attribute.String("filter.platform", criteria.Platform),
		attribute.Int("records", data.Summary.TotalGames),
	)
	span.End()

	return c.JSON(http.StatusOK, data)
}

var dimensions = map[string]engine.KeyFunc{
	"platforms":  engine.ByPlatform,
	"genres":     engine.ByGenre,
	"publishers": engine.ByPublisher,
	"years":      engine.ByYear,
}

// GetSalesBy returns sales grouped by platform, genre, publisher or year.
func (h *Handler) GetSalesBy(c echo.Context) error {
	dimension := c.Param("dimension")
	key, ok := dimensions[dimension]
	if !ok {
		return NewAPIErrorWithDetails(http.StatusNotFound, "NOT_FOUND", "Unknown sales dimension", dimension)
	}
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	var q salesQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	filtered := engine.ApplyFilters(ds.Records, engine.Criteria{Year: q.Year, Platform: q.Platform})
	value := engine.SalesField(q.By)
	var groups []engine.Group
	if q.Agg == "avg" {
		groups = engine.AverageBy(filtered, key, value)
	} else {
		groups = engine.GroupSumBy(filtered, key, value)
	}

	sort := q.Sort
	if sort == "" {
		sort = engine.SortValueDesc
		if dimension == "years" {
			sort = engine.SortChronological
		}
	}
	items := engine.TopItems(engine.SortGroups(groups, sort))
	total := len(items)
	limit, offset := getPaginationParams(c, max(total, 1))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"dimension": dimension,
		"data":      window(items, limit, offset),
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetRegionalSales returns per-region totals and their share of global sales.
func (h *Handler) GetRegionalSales(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	var q filterQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	filtered := engine.ApplyFilters(ds.Records, engine.Criteria{Year: q.Year, Platform: q.Platform})
	summary := engine.Summarize(filtered, nil)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_global":   summary.TotalGlobal,
		"shares_defined": summary.SharesDefined,
		"data":           engine.RegionItems(summary),
	})
}

// GetTopGames returns the n best-selling games, by global sales or by one
// region's sales.
func (h *Handler) GetTopGames(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	var q topQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	if c.QueryParam("n") == "" {
		q.N = defaultTopN
	}
	if q.By == "" {
		q.By = "global"
	}

	filtered := engine.ApplyFilters(ds.Records, engine.Criteria{Year: q.Year, Platform: q.Platform})
	return c.JSON(http.StatusOK, map[string]interface{}{
		"by":   q.By,
		"n":    q.N,
		"data": engine.GameRows(engine.TopN(filtered, engine.SalesField(q.By), q.N)),
	})
}

// GetGames returns one page of the searchable, sortable games table.
func (h *Handler) GetGames(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	var q gamesQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	records := h.tableRecords(ds, q)
	limit, offset := getPaginationParams(c, defaultPageLimit)
	page := engine.Paginate(records, limit, offset)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   engine.GameRows(page.Records),
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

func (h *Handler) tableRecords(ds *engine.Dataset, q gamesQuery) []engine.Record {
	records := engine.ApplyFilters(ds.Records, engine.Criteria{Year: q.Year, Platform: q.Platform})
	records = engine.Search(records, q.Q)
	if q.Sort != "" {
		records = engine.SortRecords(records, q.Sort, q.Desc)
	}
	return records
}

// GetOptions lists the values the year and platform filters accept.
func (h *Handler) GetOptions(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	if notModified(c, ds, "options") {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, engine.Options(ds.Records))
}

// GetDataset describes the served dataset and the last load failure. It
// answers 200 in every state.
func (h *Handler) GetDataset(c echo.Context) error {
	return c.JSON(http.StatusOK, datasetInfo(h.store.Status()))
}

func datasetInfo(st engine.Status) models.DatasetInfo {
	info := models.DatasetInfo{State: st.State}
	if st.LastError != nil {
		info.LastError = st.LastError.Error()
	}
	if ds := st.Current; ds != nil {
		loadedAt := ds.LoadedAt
		info.ID = ds.ID
		info.Generation = ds.Generation
		info.Source = ds.Source
		info.Records = len(ds.Records)
		info.InvalidFields = ds.InvalidFields
		info.Fingerprint = fmt.Sprintf("%016x", ds.Fingerprint)
		info.LoadedAt = &loadedAt
	}
	return info
}

// ReloadDataset reloads the configured source (or ?uri= when allowed). By
// default the load runs in the background and 202 is returned; with
// ?wait=true the response reports the outcome.
func (h *Handler) ReloadDataset(c echo.Context) error {
	var q reloadQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	uri, err := h.loader.ResolveSource(q.URI)
	if err != nil {
		return loadFailure(err)
	}

	if q.Wait {
		if _, err := h.loader.Reload(c.Request().Context(), uri); err != nil {
			return loadFailure(err)
		}
		return c.JSON(http.StatusOK, datasetInfo(h.store.Status()))
	}

	// The echo context is recycled once we return; keep only the values.
	ctx := context.WithoutCancel(c.Request().Context())
	go func() {
		if _, err := h.loader.Reload(ctx, uri); err != nil {
			h.logger.WarnContext(ctx, "background reload failed", slog.String("source", uri), slog.Any("error", err))
		}
	}()
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"status": "accepted",
		"source": uri,
	})
}

// UploadDataset replaces the dataset with the CSV in multipart field "file".
func (h *Handler) UploadDataset(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return ErrMissingUpload
		}
		return NewAPIErrorWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Expected a multipart upload", err.Error())
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		return err
	}
	if int64(len(data)) > h.maxUpload {
		return NewAPIErrorWithDetails(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
			"Uploaded dataset is too large", map[string]int64{"max_bytes": h.maxUpload})
	}

	if _, err := h.loader.LoadBytes(c.Request().Context(), fh.Filename, data); err != nil {
		return loadFailure(err)
	}
	return c.JSON(http.StatusCreated, datasetInfo(h.store.Status()))
}

// Export renders the filtered, searched and sorted table as csv, xlsx or
// arrow. The file is built in full before any header is sent, so a failed
// export still gets an error response.
func (h *Handler) Export(c echo.Context) error {
	f, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		return NewAPIError(http.StatusNotFound, "NOT_FOUND", err.Error())
	}
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	var q gamesQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	records := h.tableRecords(ds, q)
	summary := engine.Summarize(records, engine.GroupSumBy(records, engine.ByPlatform, engine.GlobalSales))

	var buf bytes.Buffer
	if err := h.writeExport(&buf, f, records, summary); err != nil {
		h.logger.ErrorContext(c.Request().Context(), "export failed", slog.String("format", string(f)), slog.Any("error", err))
		return ErrInternal
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "games."+string(f)))
	return c.Blob(http.StatusOK, f.ContentType(), buf.Bytes())
}

// Health reports liveness and the dataset state.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"dataset": h.store.Status().State,
	})
}
