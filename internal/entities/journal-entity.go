package entities

import (
	"fmt"
	"strings"
	"time"
)

type Journal struct {
	JournalID         string     `json:"id" db:"journal_id"`
	Name              string     `json:"name" db:"name"`
	ISSN              string     `json:"issn" db:"issn"`
	EISSN             string     `json:"eissn" db:"eissn"`
	Publisher         string     `json:"publisher" db:"publisher"`
	SubjectCategories string     `json:"subjectCategories" db:"subject_categories"`
	Partition2023     string     `json:"partition2023" db:"partition_2023"`
	Partition2022     string     `json:"partition2022" db:"partition_2022"`
	Partition2021     string     `json:"partition2021" db:"partition_2021"`
	ImpactFactor      *float64   `json:"impactFactor" db:"impact_factor"`
	PartitionInfo     string     `json:"partitionInfo" db:"-"`
	PartitionLevel    int        `json:"partitionLevel" db:"-"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

const PartitionUnknown = "Без раздела"

// FillPartition выставляет PartitionInfo и PartitionLevel по разделу 2023 года.
// Уровень 1..4 соответствует Q1..Q4, 5 - без раздела.
func (j *Journal) FillPartition() {
	j.PartitionInfo = j.Partition2023
	if j.PartitionInfo == "" {
		j.PartitionInfo = PartitionUnknown
	}
	j.PartitionLevel = PartitionLevel(j.PartitionInfo)
}

func PartitionLevel(partition string) int {
	p := strings.ToLower(partition)
	for level := 1; level <= 4; level++ {
		if strings.Contains(p, fmt.Sprintf("q%d", level)) {
			return level
		}
	}
	return 5
}
