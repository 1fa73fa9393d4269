package scout

import (
	"fmt"
	"io"

	"github.com/spigell/intern-scout/internal/matching"
)

// WriteReport writes the human-readable block for one newly recorded job.
func WriteReport(w io.Writer, job *matching.ScoredJob) error {
	_, err := fmt.Fprintf(w, "Relevance: %.2f\nTitle: %s\nLink: %s\nDescription: %s\n\n",
		job.Score,
		job.Posting.Title,
		job.Posting.Link,
		job.Posting.Description,
	)
	return err
}
