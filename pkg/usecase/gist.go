package usecase

import (
	"context"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/google/go-github/v74/github"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/m-mizutani/distup/pkg/domain"
)

// GistService fetches shared action export documents from GitHub gists, so
// teams can pass action collections around without shipping files. A
// GITHUB_TOKEN in the environment authenticates the client; without one,
// public gists still work within anonymous rate limits.
type GistService struct {
	client *github.Client
}

func NewGistService(ctx context.Context) *GistService {
	var hc *http.Client
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		))
	}
	return &GistService{client: github.NewClient(hc)}
}

// FetchDocument downloads the export document from a gist. When filename
// is empty the first .json file wins, falling back to the first file of
// any name. The bytes are returned unvalidated; Registry.ImportAll owns
// validation.
func (s *GistService) FetchDocument(ctx context.Context, gistID, filename string) ([]byte, error) {
	gist, _, err := s.client.Gists.Get(ctx, gistID)
	if err != nil {
		return nil, domain.ErrImport.Wrap(err)
	}

	file, err := pickGistFile(gist, filename)
	if err != nil {
		return nil, err
	}
	return gistFileBytes(ctx, file)
}

// gistFileBytes prefers the inline content. The API omits content for
// large files, so an empty content falls back to the raw URL.
func gistFileBytes(ctx context.Context, file *github.GistFile) ([]byte, error) {
	if content := file.GetContent(); content != "" {
		return []byte(content), nil
	}
	if file.GetRawURL() == "" {
		return nil, domain.ErrImport.Wrap(goerr.New("gist file has no content"))
	}
	return fetchRaw(ctx, file.GetRawURL())
}

// pickGistFile selects by explicit name, then the first .json file, then
// the first file. Candidates are ordered by name so the pick does not
// depend on map iteration order.
func pickGistFile(gist *github.Gist, filename string) (*github.GistFile, error) {
	if filename != "" {
		if file, ok := gist.Files[github.GistFilename(filename)]; ok {
			return &file, nil
		}
		return nil, domain.ErrImport.Wrap(goerr.New("gist has no file named " + filename))
	}

	names := make([]string, 0, len(gist.Files))
	for name := range gist.Files {
		names = append(names, string(name))
	}
	if len(names) == 0 {
		return nil, domain.ErrImport.Wrap(goerr.New("gist contains no files"))
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.HasSuffix(strings.ToLower(name), ".json") {
			file := gist.Files[github.GistFilename(name)]
			return &file, nil
		}
	}
	file := gist.Files[github.GistFilename(names[0])]
	return &file, nil
}

func fetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.ErrImport.Wrap(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, domain.ErrImport.Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrImport.Wrap(goerr.New("unexpected status fetching gist content: " + resp.Status))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrImport.Wrap(err)
	}
	return data, nil
}
