package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/config"
	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/LilVoxy/coursework_mortality/aggregate"
)

// Options - значения выпадающих списков дашборда
type Options struct {
	Departments []string `json:"departamentos"`
	Chapters    []string `json:"causas"`
}

// Service отвечает на запросы дашборда поверх загруженного снимка.
// Каждый запрос пересчитывается заново; снимок только читается.
type Service struct {
	snapshot     models.Table
	capabilities Capabilities
	buckets      aggregate.BucketSet
	coordinates  *CoordinateTable
	needles      []string
	topN         int
	logger       *utils.ETLLogger
}

// NewService загружает снимок из store и проверяет его по контракту представлений
func NewService(ctx context.Context, store *Store, cfg config.DashboardConfig, logger *utils.ETLLogger) (*Service, error) {
	snapshot, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки снимка: %w", err)
	}

	bucketName := cfg.BucketSet
	if bucketName == "" {
		bucketName = config.DefaultDashboardConfig.BucketSet
	}
	buckets, ok := aggregate.LookupBucketSet(bucketName)
	if !ok {
		return nil, fmt.Errorf("неизвестный набор возрастных интервалов: %s", bucketName)
	}

	coordinates, err := LookupCoordinateTable(cfg.CoordinateTable, cfg.CoordinateTables)
	if err != nil {
		return nil, err
	}

	needles := cfg.ViolentNeedles
	if len(needles) == 0 {
		needles = config.DefaultDashboardConfig.ViolentNeedles
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = config.DefaultDashboardConfig.TopN
	}

	s := &Service{
		snapshot:     snapshot,
		capabilities: CheckContract(snapshot),
		buckets:      buckets,
		coordinates:  coordinates,
		needles:      needles,
		topN:         topN,
		logger:       logger,
	}

	for _, view := range Views {
		if c := s.capabilities[view]; !c.Renderable {
			logger.Warn("Представление %s недоступно: нет колонок %v", view, c.Missing)
		}
	}
	logger.Info("Дашборд готов: %d записей, интервалы %s, координаты %s", snapshot.Len(), buckets.Name, coordinates.Name())
	return s, nil
}

// Capabilities возвращает доступность представлений для загруженного снимка
func (s *Service) Capabilities() Capabilities {
	return s.capabilities
}

// Snapshot возвращает загруженный снимок (только для чтения)
func (s *Service) Snapshot() models.Table {
	return s.snapshot
}

// Query строит представление над снимком, отфильтрованным по filter.
// Ошибки не прерывают работу: результат получает статус unavailable.
func (s *Service) Query(view View, filter Filter) ViewResult {
	startTime := time.Now()

	required, known := Contract[view]
	if !known {
		return ViewResult{
			View:    view,
			Status:  StatusUnavailable,
			Message: fmt.Sprintf(MessageUnknownView, view),
			Columns: []string{},
			Rows:    [][]any{},
		}
	}
	if c := s.capabilities[view]; !c.Renderable {
		return unavailableResult(view, c.Missing)
	}

	filtered := filter.Apply(s.snapshot)

	var (
		result ViewResult
		err    error
	)
	switch view {
	case ViewMap:
		result, err = renderMap(filtered, s.coordinates)
	case ViewMonth:
		result, err = renderMonth(filtered)
	case ViewViolent:
		result, err = renderViolent(filtered, s.needles, s.topN)
	case ViewLow:
		result, err = renderLow(filtered, s.topN)
	case ViewCauses:
		result, err = renderCauses(filtered)
	case ViewAge:
		result, err = renderAge(filtered, s.buckets)
	case ViewSex:
		result, err = renderSex(filtered)
	}
	if err != nil {
		s.logger.Error("Ошибка построения представления %s: %v", view, err)
		return unavailableResult(view, required)
	}

	s.logger.Debug("Представление %s (%+v): %d строк за %v", view, filter, len(result.Rows), time.Since(startTime))
	return result
}

// KPIs считает сводные показатели для фильтра
func (s *Service) KPIs(filter Filter) KPIs {
	return computeKPIs(filter.Apply(s.snapshot))
}

// Options возвращает отсортированные департаменты и главы причин для выпадающих списков
func (s *Service) Options() Options {
	opts := Options{Departments: []string{}, Chapters: []string{}}
	if v, err := aggregate.Distinct(s.snapshot, models.ColDepartment); err == nil && v != nil {
		opts.Departments = v
	}
	if v, err := aggregate.Distinct(s.snapshot, models.ColChapter); err == nil && v != nil {
		opts.Chapters = v
	}
	return opts
}
