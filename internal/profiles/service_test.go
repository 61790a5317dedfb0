package profiles

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

type fakeCompanyRepo struct {
	company *entity.Company
	gets    int
}

func (f *fakeCompanyRepo) Get(context.Context) (*entity.Company, error) {
	f.gets++
	if f.company == nil {
		return nil, common.NotFound("company profile not found")
	}
	c := *f.company
	return &c, nil
}

func (f *fakeCompanyRepo) Upsert(_ context.Context, c *entity.Company) (*entity.Company, error) {
	out := *c
	out.ID = "default"
	f.company = &out
	return &out, nil
}

func newService(repo *fakeCompanyRepo) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_ProfileIsCached(t *testing.T) {
	repo := &fakeCompanyRepo{company: &entity.Company{Name: "Mustergesellschaft mbH", City: "Musterstadt"}}
	svc := newService(repo)
	ctx := context.Background()

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mustergesellschaft mbH", p.Name)

	_, err = svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)

	repo.company.Name = "Changed GmbH"
	p, err = svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Changed GmbH", p.Name)
}

func TestService_ProfileMissing(t *testing.T) {
	svc := newService(&fakeCompanyRepo{})
	p, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestService_UpdateValidates(t *testing.T) {
	svc := newService(&fakeCompanyRepo{})
	ctx := context.Background()

	_, err := svc.Update(ctx, UpdateCompanyRequest{Name: " ", PostalCode: "12345"})
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidArgument, common.CodeOf(err))

	_, err = svc.Update(ctx, UpdateCompanyRequest{Name: "Beispiel AG", PostalCode: "1234"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postal_code")
}

func TestService_UpdateRefreshesCache(t *testing.T) {
	repo := &fakeCompanyRepo{company: &entity.Company{Name: "Old"}}
	svc := newService(repo)
	ctx := context.Background()

	_, err := svc.Profile(ctx)
	require.NoError(t, err)

	saved, err := svc.Update(ctx, UpdateCompanyRequest{Name: "  Beispiel AG ", PostalCode: "10115", City: "Berlin", TaxID: "de 123 456 789"})
	require.NoError(t, err)
	assert.Equal(t, "Beispiel AG", saved.Name)
	assert.Equal(t, "DE123456789", saved.TaxID)

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Beispiel AG", p.Name)
}

func TestService_ImportExportYAML(t *testing.T) {
	repo := &fakeCompanyRepo{}
	svc := newService(repo)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "company.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Beispiel AG\nstreet: Hauptstr. 1\npostal_code: \"10115\"\ncity: Berlin\n"), 0o644))

	saved, err := svc.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "Hauptstr. 1", saved.Street)
	assert.Equal(t, "10115", saved.PostalCode)

	out, err := svc.ExportYAML(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(out), "name: Beispiel AG")
	assert.Contains(t, string(out), "city: Berlin")

	_, err = svc.ImportFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
