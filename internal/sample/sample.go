// Package sample builds an example new-build dwelling budget. It backs
// the CLI's --sample flag and serves as a realistic fixture.
package sample

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

type sampleItem struct {
	code  string
	name  string
	qt    domain.QuantityType
	qty   string
	price string
}

type sampleChapter struct {
	code  string
	name  string
	items []sampleItem
}

var dwelling = []sampleChapter{
	{"01", "Grondwerk", []sampleItem{
		{"01.01", "Ontgraven bouwput", domain.QuantityVolume, "85", "12.50"},
		{"01.02", "Afvoeren grond", domain.QuantityVolume, "65", "18.00"},
		{"01.03", "Aanvullen zand", domain.QuantityVolume, "25", "22.00"},
	}},
	{"02", "Fundering", []sampleItem{
		{"02.01", "Strookfundering gewapend beton", domain.QuantityVolume, "18.5", "185.00"},
		{"02.02", "Funderingsbalken", domain.QuantityLength, "42", "95.00"},
		{"02.03", "Vloer op zand begane grond", domain.QuantityArea, "95", "65.00"},
	}},
	{"03", "Ruwbouw - Metselwerk", []sampleItem{
		{"03.01", "Buitenspouwblad kalkzandsteen", domain.QuantityArea, "185", "72.00"},
		{"03.02", "Binnenspouwblad kalkzandsteen", domain.QuantityArea, "185", "58.00"},
		{"03.03", "Spouwankers en isolatie", domain.QuantityArea, "185", "45.00"},
		{"03.04", "Binnenmuren draagconstructie", domain.QuantityArea, "65", "52.00"},
		{"03.05", "Scheidingswanden niet-dragend", domain.QuantityArea, "85", "38.00"},
	}},
	{"04", "Ruwbouw - Beton", []sampleItem{
		{"04.01", "Verdiepingsvloer kanaalplaten", domain.QuantityArea, "95", "125.00"},
		{"04.02", "Lateien en onderslagen", domain.QuantityCount, "18", "85.00"},
		{"04.03", "Betonnen dorpels", domain.QuantityLength, "24", "45.00"},
	}},
	{"05", "Dakconstructie", []sampleItem{
		{"05.01", "Kapconstructie hout", domain.QuantityArea, "110", "95.00"},
		{"05.02", "Dakbeschot en folie", domain.QuantityArea, "110", "28.00"},
		{"05.03", "Dakpannen keramisch", domain.QuantityArea, "110", "48.00"},
		{"05.04", "Dakisolatie PIR", domain.QuantityArea, "110", "55.00"},
		{"05.05", "Dakgoten en HWA", domain.QuantityLength, "28", "65.00"},
	}},
	{"06", "Kozijnen en beglazing", []sampleItem{
		{"06.01", "Kozijnen kunststof wit", domain.QuantityCount, "14", "450.00"},
		{"06.02", "Voordeur met kozijn", domain.QuantityCount, "1", "1850.00"},
		{"06.03", "HR++ beglazing", domain.QuantityArea, "32", "165.00"},
	}},
	{"07", "Afbouw", []sampleItem{
		{"07.01", "Stucwerk wanden", domain.QuantityArea, "320", "18.50"},
		{"07.02", "Stucwerk plafonds", domain.QuantityArea, "95", "22.00"},
		{"07.03", "Wandtegels badkamer", domain.QuantityArea, "28", "85.00"},
		{"07.04", "Cementdekvloer", domain.QuantityArea, "175", "28.00"},
	}},
	{"08", "Installaties", []sampleItem{
		{"08.01", "Groepenkast 12 groepen", domain.QuantityCount, "1", "850.00"},
		{"08.02", "Wandcontactdozen", domain.QuantityCount, "45", "65.00"},
		{"08.03", "CV-installatie met warmtepomp", domain.QuantityCount, "1", "9500.00"},
		{"08.04", "Bekabeling en buizen", domain.QuantityLength, "320", "8.50"},
	}},
}

// Budget builds the example dwelling budget as one committed batch, so a
// single undo clears it again.
func Budget(opts ...schedule.Option) (*schedule.Schedule, error) {
	base := []schedule.Option{
		schedule.WithName("Begroting Nieuwbouw Woning"),
		schedule.WithMeta(domain.ProjectMeta{"project": "Woningbouw Project"}),
		schedule.WithSurcharges(schedule.Surcharges{
			OverheadRate:   decimal.NewFromInt(8),
			ProfitRiskRate: decimal.NewFromInt(5),
		}),
	}
	s := schedule.New(append(base, opts...)...)

	s.BeginBatch("voorbeeldbegroting")
	for _, ch := range dwelling {
		chapter := domain.NewChapter(ch.name, domain.Code{Primary: ch.code})
		if err := s.Apply(schedule.Insert(s.RootID(), -1, chapter)); err != nil {
			s.CancelBatch()
			return nil, fmt.Errorf("inserting chapter %s: %w", ch.code, err)
		}
		for _, it := range ch.items {
			item := domain.NewCostItem(it.name, domain.Code{Primary: it.code},
				decimal.RequireFromString(it.qty), decimal.RequireFromString(it.price), it.qt)
			if err := s.Apply(schedule.Insert(chapter.ID, -1, item)); err != nil {
				s.CancelBatch()
				return nil, fmt.Errorf("inserting item %s: %w", it.code, err)
			}
		}
	}
	if err := s.EndBatch(); err != nil {
		return nil, err
	}
	return s, nil
}
