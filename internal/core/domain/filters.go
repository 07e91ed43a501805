package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BucketTag - именованный диапазон цены или площади, например "1m-3m".
type BucketTag string

// Bucket - строка таблицы диапазонов. Max == nil означает открытую верхнюю границу.
type Bucket struct {
	Tag   BucketTag
	Label string
	Min   int64
	Max   *int64
}

func bound(v int64) *int64 { return &v }

// PriceBuckets - фиксированная таблица диапазонов цены (VND в месяц).
var PriceBuckets = []Bucket{
	{Tag: "under-1m", Label: "Dưới 1 triệu", Min: 0, Max: bound(1_000_000)},
	{Tag: "1m-3m", Label: "1 - 3 triệu", Min: 1_000_000, Max: bound(3_000_000)},
	{Tag: "3m-5m", Label: "3 - 5 triệu", Min: 3_000_000, Max: bound(5_000_000)},
	{Tag: "5m-7m", Label: "5 - 7 triệu", Min: 5_000_000, Max: bound(7_000_000)},
	{Tag: "over-7m", Label: "Trên 7 triệu", Min: 7_000_000},
}

// AreaBuckets - фиксированная таблица диапазонов площади (м²).
var AreaBuckets = []Bucket{
	{Tag: "under-20", Label: "Dưới 20m²", Min: 0, Max: bound(20)},
	{Tag: "20-30", Label: "20 - 30m²", Min: 20, Max: bound(30)},
	{Tag: "30-40", Label: "30 - 40m²", Min: 30, Max: bound(40)},
	{Tag: "40-50", Label: "40 - 50m²", Min: 40, Max: bound(50)},
	{Tag: "over-50", Label: "Trên 50m²", Min: 50},
}

func lookupBucket(table []Bucket, tag BucketTag) (Bucket, bool) {
	for _, b := range table {
		if b.Tag == tag {
			return b, true
		}
	}
	return Bucket{}, false
}

// ResolvePriceBucket переводит тег цены в числовой диапазон.
func ResolvePriceBucket(tag BucketTag) (Range, bool) {
	b, ok := lookupBucket(PriceBuckets, tag)
	if !ok {
		return Range{}, false
	}
	return b.Range(), true
}

// ResolveAreaBucket переводит тег площади в числовой диапазон.
func ResolveAreaBucket(tag BucketTag) (Range, bool) {
	b, ok := lookupBucket(AreaBuckets, tag)
	if !ok {
		return Range{}, false
	}
	return b.Range(), true
}

// Range возвращает диапазон бакета в виде, который уходит на backend.
func (b Bucket) Range() Range {
	r := Range{Min: bound(b.Min)}
	if b.Max != nil {
		r.Max = bound(*b.Max)
	}
	return r
}

// Range - числовой диапазон запроса. Отсутствующая граница сериализуется как null,
// полностью пустой диапазон - как {} (без ограничения).
type Range struct {
	Min *int64 `json:"min"`
	Max *int64 `json:"max"`
}

// IsEmpty - ни одной границы не задано.
func (r Range) IsEmpty() bool {
	return r.Min == nil && r.Max == nil
}

func (r Range) MarshalJSON() ([]byte, error) {
	if r.IsEmpty() {
		return []byte("{}"), nil
	}
	type plain Range
	return json.Marshal(plain(r))
}

// Dimension - измерение фильтра, к которому относятся бакеты и границы.
type Dimension string

const (
	DimensionPrice Dimension = "price"
	DimensionArea  Dimension = "area"
)

func (d Dimension) table() []Bucket {
	switch d {
	case DimensionPrice:
		return PriceBuckets
	case DimensionArea:
		return AreaBuckets
	}
	// Теги двух таблиц не пересекаются.
	return append(append([]Bucket{}, PriceBuckets...), AreaBuckets...)
}

// DimensionSelection - выбор по одному измерению: либо бакет, либо свои границы.
// Выбор бакета стирает свои границы, непустая своя граница стирает бакет.
type DimensionSelection struct {
	dimension Dimension
	bucket    BucketTag
	customMin string
	customMax string
}

// Bucket возвращает выбранный тег или пустую строку.
func (d DimensionSelection) Bucket() BucketTag { return d.bucket }

// Custom возвращает введенные пользователем границы в исходном виде.
func (d DimensionSelection) Custom() (min, max string) { return d.customMin, d.customMax }

// SelectBucket выбирает бакет и очищает свои границы. Пустой тег снимает выбор.
func (d *DimensionSelection) SelectBucket(tag BucketTag) error {
	if tag != "" {
		if _, ok := lookupBucket(d.dimension.table(), tag); !ok {
			return NewValidationError(map[string]string{
				string(d.dimension): fmt.Sprintf("unknown range %q", tag),
			})
		}
	}
	d.bucket = tag
	d.customMin, d.customMax = "", ""
	return nil
}

// SetCustomMin задает нижнюю границу. Непустое значение снимает выбранный бакет.
func (d *DimensionSelection) SetCustomMin(v string) {
	d.customMin = v
	if v != "" {
		d.bucket = ""
	}
}

// SetCustomMax задает верхнюю границу. Непустое значение снимает выбранный бакет.
func (d *DimensionSelection) SetCustomMax(v string) {
	d.customMax = v
	if v != "" {
		d.bucket = ""
	}
}

// Clear сбрасывает выбор по измерению.
func (d *DimensionSelection) Clear() {
	d.bucket, d.customMin, d.customMax = "", "", ""
}

// Resolve превращает выбор в диапазон запроса.
func (d DimensionSelection) Resolve() (Range, error) {
	if d.bucket != "" {
		b, ok := lookupBucket(d.dimension.table(), d.bucket)
		if !ok {
			return Range{}, nil
		}
		return b.Range(), nil
	}

	if d.customMin == "" && d.customMax == "" {
		return Range{}, nil
	}

	errs := make(map[string]string)
	minV, err := parseBound(d.customMin)
	if err != nil {
		errs[string(d.dimension)+".min"] = err.Error()
	}
	maxV, err := parseBound(d.customMax)
	if err != nil {
		errs[string(d.dimension)+".max"] = err.Error()
	}
	if len(errs) > 0 {
		return Range{}, NewValidationError(errs)
	}

	return Range{Min: minV, Max: maxV}, nil
}

// parseBound: пустая строка - границы нет (не ноль), иначе целое неотрицательное число.
func parseBound(raw string) (*int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a whole number", raw)
	}
	if v < 0 {
		return nil, fmt.Errorf("must not be negative")
	}
	return &v, nil
}

// Place - элемент административного деления (провинция, район, коммуна).
type Place struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// IsZero - место не выбрано.
func (p Place) IsZero() bool { return p.Code == 0 && p.Name == "" }

// LocationSelection - каскадный выбор местоположения.
// Смена провинции сбрасывает район и коммуну, смена района сбрасывает коммуну.
type LocationSelection struct {
	province Place
	district Place
	ward     Place
}

func (l LocationSelection) Province() Place { return l.province }
func (l LocationSelection) District() Place { return l.district }
func (l LocationSelection) Ward() Place     { return l.ward }

func (l *LocationSelection) SelectProvince(p Place) {
	l.province = p
	l.district = Place{}
	l.ward = Place{}
}

// SelectDistrict требует выбранной провинции.
func (l *LocationSelection) SelectDistrict(p Place) error {
	if l.province.IsZero() && !p.IsZero() {
		return NewValidationError(map[string]string{"district": "select a province first"})
	}
	l.district = p
	l.ward = Place{}
	return nil
}

// SelectWard требует выбранного района.
func (l *LocationSelection) SelectWard(p Place) error {
	if l.district.IsZero() && !p.IsZero() {
		return NewValidationError(map[string]string{"ward": "select a district first"})
	}
	l.ward = p
	return nil
}

func (l *LocationSelection) Clear() {
	*l = LocationSelection{}
}

// FurnitureCondition - состояние мебели.
type FurnitureCondition string

const (
	FurnitureAny  FurnitureCondition = ""
	FurnitureNew  FurnitureCondition = "new"
	FurnitureUsed FurnitureCondition = "used"
)

// ParseFurnitureCondition проверяет значение из формы.
func ParseFurnitureCondition(s string) (FurnitureCondition, error) {
	switch c := FurnitureCondition(strings.TrimSpace(s)); c {
	case FurnitureAny, FurnitureNew, FurnitureUsed:
		return c, nil
	}
	return "", NewValidationError(map[string]string{"furnitureCondition": fmt.Sprintf("unknown value %q", s)})
}

// UtilityLevel - уровень удобств.
type UtilityLevel string

const (
	UtilityAny    UtilityLevel = ""
	UtilityHigh   UtilityLevel = "high"
	UtilityMedium UtilityLevel = "medium"
	UtilityLow    UtilityLevel = "low"
)

func ParseUtilityLevel(s string) (UtilityLevel, error) {
	switch u := UtilityLevel(strings.TrimSpace(s)); u {
	case UtilityAny, UtilityHigh, UtilityMedium, UtilityLow:
		return u, nil
	}
	return "", NewValidationError(map[string]string{"utility": fmt.Sprintf("unknown value %q", s)})
}

// FilterSelection - состояние панели фильтров.
type FilterSelection struct {
	Price              DimensionSelection
	Area               DimensionSelection
	Location           LocationSelection
	FurnitureCondition FurnitureCondition
	Utility            UtilityLevel
}

// NewFilterSelection возвращает пустой выбор с привязанными измерениями.
func NewFilterSelection() FilterSelection {
	return FilterSelection{
		Price: DimensionSelection{dimension: DimensionPrice},
		Area:  DimensionSelection{dimension: DimensionArea},
	}
}

// Reset очищает все фильтры.
func (s *FilterSelection) Reset() {
	*s = NewFilterSelection()
}

// Compose собирает запрос фильтр-поиска из выбора и ключевого слова.
func (s FilterSelection) Compose(keyword string) (SearchQuery, error) {
	s.Price.dimension = DimensionPrice
	s.Area.dimension = DimensionArea

	price, priceErr := s.Price.Resolve()
	area, areaErr := s.Area.Resolve()
	if priceErr != nil || areaErr != nil {
		return SearchQuery{}, mergeValidation(priceErr, areaErr)
	}

	return SearchQuery{
		Keyword: keyword,
		Location: LocationQuery{
			Province: s.Location.province.Name,
			District: s.Location.district.Name,
			Ward:     s.Location.ward.Name,
		},
		Filters: QueryFilters{
			Price:              price,
			Area:               area,
			FurnitureCondition: s.FurnitureCondition,
			Utility:            s.Utility,
		},
	}, nil
}

func mergeValidation(errs ...error) error {
	fields := make(map[string]string)
	for _, err := range errs {
		if ve, ok := err.(*ValidationError); ok {
			for k, v := range ve.Fields {
				fields[k] = v
			}
		}
	}
	return NewValidationError(fields)
}

// SearchQuery - тело запроса фильтр-поиска.
type SearchQuery struct {
	Keyword  string        `json:"keyword"`
	Location LocationQuery `json:"location"`
	Filters  QueryFilters  `json:"filters"`
}

type LocationQuery struct {
	Province string `json:"province"`
	District string `json:"district"`
	Ward     string `json:"ward"`
}

type QueryFilters struct {
	Price              Range              `json:"price"`
	Area               Range              `json:"area"`
	FurnitureCondition FurnitureCondition `json:"furnitureCondition"`
	Utility            UtilityLevel       `json:"utility"`
}

// Option - пункт выпадающего списка.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FilterOptions - все таблицы вариантов для панели фильтров.
type FilterOptions struct {
	Price     []Option `json:"price_ranges"`
	Area      []Option `json:"area_ranges"`
	Furniture []Option `json:"furniture_conditions"`
	Utility   []Option `json:"utility_levels"`
}

// DefaultFilterOptions строит таблицы вариантов из бакетов.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		Price: bucketOptions("Tất cả khoảng giá", PriceBuckets),
		Area:  bucketOptions("Tất cả diện tích", AreaBuckets),
		Furniture: []Option{
			{Label: "Tất cả nội thất", Value: string(FurnitureAny)},
			{Label: "Mới", Value: string(FurnitureNew)},
			{Label: "Đã sử dụng", Value: string(FurnitureUsed)},
		},
		Utility: []Option{
			{Label: "Tất cả tiện ích", Value: string(UtilityAny)},
			{Label: "Cao", Value: string(UtilityHigh)},
			{Label: "Vừa", Value: string(UtilityMedium)},
			{Label: "Thấp", Value: string(UtilityLow)},
		},
	}
}

func bucketOptions(anyLabel string, table []Bucket) []Option {
	opts := make([]Option, 0, len(table)+1)
	opts = append(opts, Option{Label: anyLabel, Value: ""})
	for _, b := range table {
		opts = append(opts, Option{Label: b.Label, Value: string(b.Tag)})
	}
	return opts
}
