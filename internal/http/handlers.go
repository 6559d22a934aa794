package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"factoring/internal/amqp"
	"factoring/internal/core"
	"factoring/internal/ledger"
	applog "factoring/internal/log"
)

// handleRawData ingests a batch of raw invoice records. The whole batch is
// validated up front and rejected with a single error string on the first
// failing check. Valid rows are inserted one by one, silently skipping
// duplicates on (invoice number, customer). The response is the distinct
// revenue source list, also served on GET without ingesting.
func (s *Server) handleRawData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		// fall through to the revenue source listing below
	case http.MethodPost:
		var batch []core.RawRecord
		if err := decodeBody(r, &batch); err != nil {
			s.logger.ErrorContext(ctx, "Failed to decode batch", "error", err)
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		records, err := core.ValidateBatch(batch)
		if err != nil {
			s.logger.WarnContext(ctx, "Batch rejected",
				applog.FieldBatchSize, len(batch),
				"error", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		inserted, skipped := 0, 0
		for _, rec := range records {
			ok, err := s.store.InsertIfAbsent(ctx, rec)
			if err != nil {
				s.logger.ErrorContext(ctx, "Failed to insert record",
					applog.FieldCustomer, rec.Customer,
					"invoice_number", rec.InvoiceNumber,
					"error", err)
				writeError(w, http.StatusInternalServerError, "failed to store records")
				return
			}
			if ok {
				inserted++
			} else {
				skipped++
			}
		}

		atomic.AddInt64(&s.metrics.batchesIngested, 1)
		atomic.AddInt64(&s.metrics.recordsIngested, int64(inserted))
		atomic.AddInt64(&s.metrics.duplicatesSkipped, int64(skipped))
		s.breakdownCache.Purge()

		s.logger.InfoContext(ctx, "Batch ingested",
			applog.FieldBatchSize, len(records),
			applog.FieldInserted, inserted,
			applog.FieldSkipped, skipped)

		s.publishAudit(ctx, amqp.NewBatchIngestedEvent(len(records), inserted, skipped))
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sources, err := s.store.RevenueSources(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list revenue sources", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list revenue sources")
		return
	}
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, sources)
}

type calculateRequest struct {
	RevenueSource  string `json:"revenue_source"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	TargetCurrency string `json:"target_currency"`
}

// handleCalculateValues computes the full revenue breakdown for one revenue
// source over a date range, converted to the target currency.
func (s *Server) handleCalculateValues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req calculateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	from, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, core.ErrInvalidDate.Error())
		return
	}
	to, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, core.ErrInvalidDate.Error())
		return
	}
	target, ok := core.ParseCurrency(req.TargetCurrency)
	if !ok {
		writeError(w, http.StatusBadRequest, core.ErrInvalidCurrency.Error())
		return
	}

	cacheKey := "breakdown|" + req.RevenueSource + "|" + req.StartDate + "|" + req.EndDate + "|" + string(target)
	if b, found := s.breakdownCache.Get(cacheKey); found {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
		writeBreakdown(w, b)
		return
	}
	atomic.AddInt64(&s.metrics.cacheMisses, 1)

	records, err := s.store.Query(ctx, ledger.Filter{
		RevenueSource: req.RevenueSource,
		From:          from,
		To:            to,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Query failed",
			applog.FieldRevenueSource, req.RevenueSource, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query records")
		return
	}
	if len(records) == 0 {
		atomic.AddInt64(&s.metrics.emptyResults, 1)
		writeError(w, http.StatusBadRequest, core.ErrNoData.Error())
		return
	}

	breakdown := core.Aggregate(records, target, s.rates)
	s.reportRateMisses(ctx, breakdown.Misses, target)

	s.breakdownCache.Set(cacheKey, breakdown)
	writeBreakdown(w, breakdown)
}

type customerTotalRequest struct {
	Customer  string `json:"customer"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// handleCustomerTotal computes the simple-sum total for one customer over a
// date range. No conversion and no advance or fee terms.
func (s *Server) handleCustomerTotal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req customerTotalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	from, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, core.ErrInvalidDate.Error())
		return
	}
	to, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, core.ErrInvalidDate.Error())
		return
	}

	records, err := s.store.Query(ctx, ledger.Filter{
		Customer: req.Customer,
		From:     from,
		To:       to,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Query failed",
			applog.FieldCustomer, req.Customer, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query records")
		return
	}
	if len(records) == 0 {
		atomic.AddInt64(&s.metrics.emptyResults, 1)
		writeError(w, http.StatusBadRequest, core.ErrNoData.Error())
		return
	}

	total := core.SumValues(records)
	writeJSON(w, http.StatusOK, map[string]json.Number{
		"total_value": json.Number(total.StringFixed(2)),
	})
}

// handleGet dumps every stored record. Debug surface.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	records, err := s.store.ListAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list records", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	out := make([]recordJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordJSON(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReset wipes the store. All-or-nothing, no partial delete.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := s.store.DeleteAll(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to reset store", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reset store")
		return
	}

	s.breakdownCache.Purge()
	s.logger.InfoContext(ctx, "Store reset")
	s.publishAudit(ctx, amqp.NewStoreResetEvent())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Database reset successfully."))
}

// reportRateMisses surfaces silent conversion gaps through metrics, logs,
// and audit events. The aggregation result itself is left untouched.
func (s *Server) reportRateMisses(ctx context.Context, misses []core.RateMiss, target core.Currency) {
	for _, miss := range misses {
		atomic.AddInt64(&s.metrics.rateMisses, int64(miss.Count))
		s.logger.WarnContext(ctx, "No conversion rate for currency pair",
			applog.FieldFromCurrency, string(miss.Pair.From),
			applog.FieldToCurrency, string(miss.Pair.To),
			applog.FieldRecordCount, miss.Count)
		s.publishAudit(ctx, amqp.NewRateMissEvent(string(miss.Pair.From), string(miss.Pair.To), miss.Count))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.startedAt).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs a readiness check with a store probe.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.store == nil {
		checks["store"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if _, err := s.store.RevenueSources(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["cache"] = map[string]any{
		"breakdown_entries": s.breakdownCache.Size(),
		"status":            "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.activeClients(),
		"status":         "ok",
	}

	response := map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	totalRequests := atomic.LoadInt64(&s.metrics.totalRequests)
	batches := atomic.LoadInt64(&s.metrics.batchesIngested)
	records := atomic.LoadInt64(&s.metrics.recordsIngested)
	duplicates := atomic.LoadInt64(&s.metrics.duplicatesSkipped)
	rateMisses := atomic.LoadInt64(&s.metrics.rateMisses)
	emptyResults := atomic.LoadInt64(&s.metrics.emptyResults)
	cacheHits := atomic.LoadInt64(&s.metrics.cacheHits)
	cacheMisses := atomic.LoadInt64(&s.metrics.cacheMisses)
	rateLimitHits := atomic.LoadInt64(&s.metrics.rateLimitHits)
	uptime := time.Since(s.metrics.startedAt)

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", totalRequests)

	fmt.Fprintf(w, "# HELP batches_ingested_total Total number of batches ingested\n")
	fmt.Fprintf(w, "# TYPE batches_ingested_total counter\n")
	fmt.Fprintf(w, "batches_ingested_total %d\n\n", batches)

	fmt.Fprintf(w, "# HELP records_ingested_total Total number of records inserted\n")
	fmt.Fprintf(w, "# TYPE records_ingested_total counter\n")
	fmt.Fprintf(w, "records_ingested_total %d\n\n", records)

	fmt.Fprintf(w, "# HELP duplicates_skipped_total Total duplicate records skipped on ingest\n")
	fmt.Fprintf(w, "# TYPE duplicates_skipped_total counter\n")
	fmt.Fprintf(w, "duplicates_skipped_total %d\n\n", duplicates)

	fmt.Fprintf(w, "# HELP rate_misses_total Total records aggregated without a conversion rate\n")
	fmt.Fprintf(w, "# TYPE rate_misses_total counter\n")
	fmt.Fprintf(w, "rate_misses_total %d\n\n", rateMisses)

	fmt.Fprintf(w, "# HELP empty_results_total Total aggregation requests matching zero records\n")
	fmt.Fprintf(w, "# TYPE empty_results_total counter\n")
	fmt.Fprintf(w, "empty_results_total %d\n\n", emptyResults)

	fmt.Fprintf(w, "# HELP cache_hits_total Total breakdown cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total %d\n\n", cacheHits)

	fmt.Fprintf(w, "# HELP cache_misses_total Total breakdown cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total %d\n\n", cacheMisses)

	fmt.Fprintf(w, "# HELP cache_entries Current breakdown cache entries\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries %d\n\n", s.breakdownCache.Size())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitHits)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.rateLimiter.activeClients())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", uptime.Seconds())
}
