package fenqubiao

import (
	"fmt"

	"paper-system/internal/entities"
)

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func mapJournalToInternal(ext JournalDTO) (entities.Journal, error) {
	j := entities.Journal{
		JournalID:         firstNonEmpty(ext.ID.String(), ext.JournalID.String()),
		Name:              firstNonEmpty(ext.Name, ext.JournalName),
		ISSN:              ext.ISSN,
		EISSN:             ext.EISSN,
		Publisher:         ext.Publisher,
		SubjectCategories: firstNonEmpty(ext.SubjectCategories, ext.Categories),
		Partition2023:     firstNonEmpty(ext.Partition2023.String(), ext.Year2023.String()),
		Partition2022:     firstNonEmpty(ext.Partition2022.String(), ext.Year2022.String()),
		Partition2021:     firstNonEmpty(ext.Partition2021.String(), ext.Year2021.String()),
		ImpactFactor:      ext.ImpactFactor.Float(),
	}
	if j.ImpactFactor == nil {
		j.ImpactFactor = ext.IF2022.Float()
	}
	if j.JournalID == "" || j.Name == "" {
		return j, fmt.Errorf("запись каталога без идентификатора или названия")
	}
	j.FillPartition()
	return j, nil
}
