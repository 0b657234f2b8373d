package dashboard

import (
	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/aggregate"
)

// KPIs - сводные показатели над отфильтрованным снимком.
// Показатель, для которого нет колонки или данных, остается пустым.
type KPIs struct {
	TotalRecords int      `json:"total_registros"`
	DeathTypes   int      `json:"tipos_muerte"`
	SexMax       string   `json:"sexo_max,omitempty"`
	DeptMax      string   `json:"dpto_max,omitempty"`
	DeptMin      string   `json:"dpto_min,omitempty"`
	Missing      []string `json:"faltantes,omitempty"`
}

func computeKPIs(table models.Table) KPIs {
	kpis := KPIs{TotalRecords: table.Len()}
	kpis.Missing = missingColumns(table, []string{models.ColMannerDeath, models.ColSex, models.ColDepartment})

	if n, err := aggregate.CountDistinct(table, models.ColMannerDeath); err == nil {
		kpis.DeathTypes = n
	}

	if remapped, err := aggregate.RemapColumn(table, models.ColSex, aggregate.SexLabels); err == nil {
		if counts, err := aggregate.GroupCount(remapped, models.ColSex); err == nil {
			if top, ok := counts.Max(); ok {
				kpis.SexMax = top.Key().String
			}
		}
	}

	if counts, err := aggregate.GroupCount(table, models.ColDepartment); err == nil {
		if top, ok := counts.Max(); ok {
			kpis.DeptMax = top.Key().String
		}
		if bottom, ok := counts.Min(); ok {
			kpis.DeptMin = bottom.Key().String
		}
	}
	return kpis
}
