package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Crane collapse</title></head><body>
<article>
<h1>Crane collapses at metro site</h1>
<p>A crane collapsed at the metro construction site on Monday morning, injuring two workers.</p>
<p>Authorities said the site had passed a safety inspection the previous week without findings.</p>
<p>An inquiry into the collapse was opened the same afternoon by the city transport authority.</p>
<p>Work on the affected section of the line has been suspended until further notice.</p>
</article>
</body></html>`

func TestTextExtractsArticleBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	e := NewExtractor(5 * time.Second)
	text, err := e.Text(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, text, "crane collapsed at the metro construction site")
	assert.Contains(t, text, "inquiry into the collapse")
}

func TestTextFailsOnUnreachableURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	e := NewExtractor(2 * time.Second)
	_, err := e.Text(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestTextFailsOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer srv.Close()

	e := NewExtractor(5 * time.Second)
	_, err := e.Text(context.Background(), srv.URL)
	assert.Error(t, err, "empty page must be an extraction failure, not empty success")
}

func TestNormalize(t *testing.T) {
	in := "First  paragraph\twith   gaps.\n\n\n\nSecond\r paragraph.\n\n"
	got := normalize(in)

	assert.Equal(t, "First paragraph with gaps.\n\nSecond paragraph.", got)
	assert.False(t, strings.Contains(got, "  "))
}
