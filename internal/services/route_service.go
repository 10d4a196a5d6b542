package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/transitpulse/transit-assistant-backend/internal/geo"
	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
)

const (
	DefaultRouteLimit     = 20
	MaxRouteLimit         = 100
	SearchResultLimit     = 20
	EmptySearchLimit      = 10
	NearbyResultLimit     = 10
	DefaultNearbyRadiusKm = 1.0
)

// RouteListQuery holds the parsed query of GET /api/routes
type RouteListQuery struct {
	TransportType string // empty or "all" for every type
	ActiveOnly    bool
	Page          int
	Limit         int
}

// RouteList is one page of routes
type RouteList struct {
	Routes      []models.Route
	Total       int
	TotalPages  int
	CurrentPage int
}

// NearbyQuery holds the parsed query of GET /api/routes/nearby; nil means absent
type NearbyQuery struct {
	Lat      *float64
	Lng      *float64
	RadiusKm *float64
}

// RouteService implements route browsing, search and administration
type RouteService struct {
	routes repository.RouteStore
	logger *logrus.Logger
}

// NewRouteService creates a new RouteService
func NewRouteService(routes repository.RouteStore, logger *logrus.Logger) *RouteService {
	return &RouteService{
		routes: routes,
		logger: logger,
	}
}

// List returns one page of routes by popularity, then route number
func (s *RouteService) List(ctx context.Context, q RouteListQuery) (*RouteList, error) {
	transportType, err := parseTransportFilter(q.TransportType)
	if err != nil {
		return nil, err
	}

	filter := models.RouteFilter{
		TransportType: transportType,
		ActiveOnly:    q.ActiveOnly,
		Page:          q.Page,
		Limit:         clampLimit(q.Limit, DefaultRouteLimit, MaxRouteLimit),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Page > math.MaxInt32/filter.Limit {
		return nil, models.ErrBadRequest("page must be at most %d", math.MaxInt32/filter.Limit)
	}

	routes, total, err := s.routes.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "route", "list routes")
	}

	return &RouteList{
		Routes:      routes,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		CurrentPage: filter.Page,
	}, nil
}

// Search matches term against route numbers, names and stop names of active routes.
// Every matched route gains one popularity point; an empty term lists the most popular routes instead.
func (s *RouteService) Search(ctx context.Context, term, transportType string) ([]models.Route, error) {
	tt, err := parseTransportFilter(transportType)
	if err != nil {
		return nil, err
	}

	term = strings.TrimSpace(term)
	if term == "" {
		routes, err := s.routes.Search(ctx, "", tt, EmptySearchLimit)
		if err != nil {
			return nil, storeError(err, "route", "list popular routes")
		}
		return routes, nil
	}

	routes, err := s.routes.Search(ctx, term, tt, SearchResultLimit)
	if err != nil {
		return nil, storeError(err, "route", "search routes")
	}

	ids := make([]uuid.UUID, len(routes))
	for i := range routes {
		ids[i] = routes[i].ID
	}
	if s.bumpPopularity(ctx, ids...) {
		for i := range routes {
			routes[i].PopularityScore++
		}
	}

	return routes, nil
}

// Get returns a route, active or not, and counts the view toward its popularity
func (s *RouteService) Get(ctx context.Context, rawID string) (*models.Route, error) {
	id, err := parseResourceID(rawID, "route")
	if err != nil {
		return nil, err
	}

	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "route", "get route")
	}

	if s.bumpPopularity(ctx, route.ID) {
		route.PopularityScore++
	}

	return route, nil
}

// bumpPopularity increments the given routes by one. Failures are logged and
// reported as false; they never fail the request.
func (s *RouteService) bumpPopularity(ctx context.Context, ids ...uuid.UUID) bool {
	if len(ids) == 0 {
		return false
	}
	if err := s.routes.IncrementPopularity(ctx, ids, 1); err != nil {
		s.logger.WithError(err).WithField("routes", len(ids)).Warn("Failed to increment route popularity")
		return false
	}
	return true
}

// Create validates and stores a new route
func (s *RouteService) Create(ctx context.Context, req models.CreateRouteRequest) (*models.Route, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	route := &models.Route{
		ID:                uuid.New(),
		RouteNumber:       models.NormalizeRouteNumber(req.RouteNumber),
		Name:              strings.TrimSpace(req.Name),
		Description:       strings.TrimSpace(req.Description),
		TransportType:     models.TransportType(req.TransportType),
		Stops:             models.NormalizeStops(req.Stops),
		Schedule:          normalizeSchedule(req.Schedule),
		Operator:          strings.TrimSpace(req.Operator),
		Color:             req.Color,
		DistanceKm:        req.DistanceKm,
		EstimatedDuration: req.EstimatedDuration,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.Fare != nil {
		route.Fare = *req.Fare
	}
	if route.Color == "" {
		route.Color = models.DefaultRouteColor
	}
	if req.IsActive != nil {
		route.IsActive = *req.IsActive
	}

	if err := checkRouteFields(route); err != nil {
		return nil, err
	}
	if err := s.ensureNumberFree(ctx, route.RouteNumber, nil); err != nil {
		return nil, err
	}

	if err := s.routes.Create(ctx, route); err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			return nil, duplicateNumber(route.RouteNumber)
		}
		return nil, storeError(err, "route", "create route")
	}

	s.logger.WithFields(logrus.Fields{
		"route_id":     route.ID,
		"route_number": route.RouteNumber,
	}).Info("Route created")

	return route, nil
}

// Update applies the supplied fields to an existing route
func (s *RouteService) Update(ctx context.Context, rawID string, req models.UpdateRouteRequest) (*models.Route, error) {
	id, err := parseResourceID(rawID, "route")
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "route", "get route")
	}

	previousNumber := route.RouteNumber
	req.Apply(route)
	if req.Schedule != nil {
		route.Schedule = normalizeSchedule(route.Schedule)
	}
	route.UpdatedAt = time.Now().UTC()

	if err := checkRouteFields(route); err != nil {
		return nil, err
	}
	if route.RouteNumber != previousNumber {
		if err := s.ensureNumberFree(ctx, route.RouteNumber, &route.ID); err != nil {
			return nil, err
		}
	}

	if err := s.routes.Update(ctx, route); err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			return nil, duplicateNumber(route.RouteNumber)
		}
		return nil, storeError(err, "route", "update route")
	}

	s.logger.WithField("route_id", route.ID).Info("Route updated")

	return route, nil
}

// Delete deactivates a route; it stays readable by id
func (s *RouteService) Delete(ctx context.Context, rawID string) error {
	id, err := parseResourceID(rawID, "route")
	if err != nil {
		return err
	}

	if err := s.routes.SetActive(ctx, id, false); err != nil {
		return storeError(err, "route", "deactivate route")
	}

	s.logger.WithField("route_id", id).Info("Route deactivated")

	return nil
}

// Nearby returns up to ten active routes whose closest stop lies within the radius,
// closest first
func (s *RouteService) Nearby(ctx context.Context, q NearbyQuery) ([]models.NearbyRoute, error) {
	if q.Lat == nil || q.Lng == nil {
		return nil, models.ErrBadRequest("latitude and longitude are required")
	}
	if !geo.ValidLatLng(*q.Lat, *q.Lng) {
		return nil, models.ErrBadRequest("latitude must be within [-90, 90] and longitude within [-180, 180]")
	}

	radius := DefaultNearbyRadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}
	if math.IsNaN(radius) || radius < 0 {
		return nil, models.ErrBadRequest("radius must be a non-negative number of kilometres")
	}

	routes, err := s.routes.ListActive(ctx)
	if err != nil {
		return nil, storeError(err, "route", "list active routes")
	}

	point := models.Coordinates{Lat: *q.Lat, Lng: *q.Lng}
	nearby := []models.NearbyRoute{}
	for _, route := range routes {
		nearest, ok := geo.NearestStop(point, route.Stops)
		if !ok || nearest.Distance > radius {
			continue
		}
		nearby = append(nearby, models.NearbyRoute{Route: route, NearestStop: nearest})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].NearestStop.Distance < nearby[j].NearestStop.Distance
	})
	if len(nearby) > NearbyResultLimit {
		nearby = nearby[:NearbyResultLimit]
	}

	return nearby, nil
}

// Geometry renders a route's stops as a GeoJSON feature
func (s *RouteService) Geometry(ctx context.Context, rawID string) (*geojson.Feature, error) {
	id, err := parseResourceID(rawID, "route")
	if err != nil {
		return nil, err
	}

	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "route", "get route")
	}

	return geo.RouteFeature(route)
}

func (s *RouteService) ensureNumberFree(ctx context.Context, routeNumber string, exclude *uuid.UUID) error {
	taken, err := s.routes.ExistsByNumber(ctx, routeNumber, exclude)
	if err != nil {
		return storeError(err, "route", "check route number")
	}
	if taken {
		return duplicateNumber(routeNumber)
	}
	return nil
}

func duplicateNumber(routeNumber string) error {
	return models.ErrConflict("route number " + routeNumber + " already exists")
}

// checkRouteFields catches values that only become empty after trimming
func checkRouteFields(route *models.Route) error {
	verr := &models.ValidationError{Message: "validation failed"}
	if route.RouteNumber == "" {
		verr.Add("routeNumber", "is required")
	}
	if route.Name == "" {
		verr.Add("name", "is required")
	}
	for i, stop := range route.Stops {
		if stop.Name == "" {
			verr.Add("stops["+itoa(i)+"].name", "is required")
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// parseTransportFilter accepts "", "all" or a supported transport type
func parseTransportFilter(raw string) (models.TransportType, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return "", nil
	}
	t := models.TransportType(raw)
	if !t.Valid() {
		return "", models.ErrBadRequest("unknown transport type %q", raw)
	}
	return t, nil
}

// normalizeSchedule defaults operational to true
func normalizeSchedule(entries []models.ScheduleEntry) models.Schedule {
	out := make(models.Schedule, len(entries))
	for i, e := range entries {
		if e.Operational == nil {
			operational := true
			e.Operational = &operational
		}
		out[i] = e
	}
	return out
}
