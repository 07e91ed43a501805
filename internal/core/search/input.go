package search

import (
	"errors"

	"roomfinder/internal/core/domain"
)

// DimensionInput - выбор по одному измерению в том виде, как его присылает интерфейс.
type DimensionInput struct {
	Bucket string `json:"bucket"`
	Min    string `json:"min"`
	Max    string `json:"max"`
}

func (in DimensionInput) apply(d *domain.DimensionSelection) error {
	d.Clear()
	if in.Bucket != "" {
		return d.SelectBucket(domain.BucketTag(in.Bucket))
	}
	d.SetCustomMin(in.Min)
	d.SetCustomMax(in.Max)
	return nil
}

// FilterInput - полный выбор фильтров. Apply заменяет им текущий выбор целиком.
type FilterInput struct {
	Price              DimensionInput `json:"price"`
	Area               DimensionInput `json:"area"`
	Province           domain.Place   `json:"province"`
	District           domain.Place   `json:"district"`
	Ward               domain.Place   `json:"ward"`
	FurnitureCondition string         `json:"furnitureCondition"`
	Utility            string         `json:"utility"`
}

func (in FilterInput) Apply(s *domain.FilterSelection) error {
	s.Reset()

	var errs []error
	errs = append(errs, in.Price.apply(&s.Price), in.Area.apply(&s.Area))

	if !in.Province.IsZero() {
		s.Location.SelectProvince(in.Province)
	}
	if !in.District.IsZero() {
		errs = append(errs, s.Location.SelectDistrict(in.District))
	}
	if !in.Ward.IsZero() {
		errs = append(errs, s.Location.SelectWard(in.Ward))
	}

	furniture, err := domain.ParseFurnitureCondition(in.FurnitureCondition)
	errs = append(errs, err)
	utility, err := domain.ParseUtilityLevel(in.Utility)
	errs = append(errs, err)
	s.FurnitureCondition = furniture
	s.Utility = utility

	return joinValidation(errs)
}

// InputFromSelection - обратное преобразование для показа текущего выбора.
func InputFromSelection(s domain.FilterSelection) FilterInput {
	priceMin, priceMax := s.Price.Custom()
	areaMin, areaMax := s.Area.Custom()
	return FilterInput{
		Price:              DimensionInput{Bucket: string(s.Price.Bucket()), Min: priceMin, Max: priceMax},
		Area:               DimensionInput{Bucket: string(s.Area.Bucket()), Min: areaMin, Max: areaMax},
		Province:           s.Location.Province(),
		District:           s.Location.District(),
		Ward:               s.Location.Ward(),
		FurnitureCondition: string(s.FurnitureCondition),
		Utility:            string(s.Utility),
	}
}

func joinValidation(errs []error) error {
	fields := make(map[string]string)
	var other []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			for k, v := range ve.Fields {
				fields[k] = v
			}
			continue
		}
		other = append(other, err)
	}
	if len(other) > 0 {
		return errors.Join(other...)
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return nil
}
