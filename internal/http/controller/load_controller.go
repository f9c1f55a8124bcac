package controller

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

const (
	cpuHeavySize     = 500000
	largePayloadSize = 50000
)

// LoadController serves the synthetic CPU and payload endpoints. Neither touches the database.
type LoadController struct{}

func NewLoadController() *LoadController {
	return &LoadController{}
}

// LargeRecord is one element of the /file-large payload.
type LargeRecord struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CPUHeavy sorts a reversed sequence to burn CPU.
func (lc *LoadController) CPUHeavy(c *gin.Context) {
	data := make([]int, cpuHeavySize)
	for i := range data {
		data[i] = cpuHeavySize - i
	}
	slices.Sort(data)

	c.String(http.StatusOK, "CPU-heavy operation completed")
}

// FileLarge returns a large JSON array built in memory.
func (lc *LoadController) FileLarge(c *gin.Context) {
	writeJSON(c, http.StatusOK, largePayload())
}

func largePayload() []LargeRecord {
	records := make([]LargeRecord, largePayloadSize)
	for i := range records {
		records[i] = LargeRecord{
			ID:    i,
			Name:  fmt.Sprintf("Product-%d", i),
			Price: float64(i) / 10.0,
		}
	}
	return records
}
