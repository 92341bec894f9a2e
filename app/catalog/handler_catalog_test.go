package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/littlelemon/ordering-api/app/auth"
	"github.com/littlelemon/ordering-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// --- Mock Repo ---

type MockMenuItemRepo struct {
	SourceItems []models.MenuItem
	Categories  []models.Category
	Err         error

	// Fields to capture call arguments
	lastCalledOffset  int
	lastCalledLimit   int
	lastCalledFilters models.MenuItemFilters
	lastCalledSlug    string
	lastSaved         *models.MenuItem
}

func (m *MockMenuItemRepo) GetFilteredMenuItems(_ context.Context, offset, limit int, filters models.MenuItemFilters) ([]models.MenuItem, int64, error) {
	m.lastCalledOffset = offset
	m.lastCalledLimit = limit
	m.lastCalledFilters = filters

	if m.Err != nil {
		return nil, 0, m.Err
	}

	// Simulate filtering
	filtered := []models.MenuItem{}
	for _, p := range m.SourceItems {
		if filters.CategorySlug != "" && p.Category.Slug != filters.CategorySlug {
			continue
		}
		if filters.CategoryID != 0 && p.CategoryID != filters.CategoryID {
			continue
		}
		filtered = append(filtered, p)
	}

	// Simulate ordering
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		switch filters.OrderBy {
		case "-price":
			return a.Price.GreaterThan(b.Price)
		case "title":
			return a.Title < b.Title
		case "-title":
			return a.Title > b.Title
		default:
			return a.Price.LessThan(b.Price)
		}
	})

	total := int64(len(filtered))

	// Simulate pagination
	start := min(offset, len(filtered))
	end := len(filtered)
	if limit >= 0 {
		end = min(offset+limit, len(filtered))
	}

	return filtered[start:end], total, nil
}

func (m *MockMenuItemRepo) GetBySlug(_ context.Context, slug string) (*models.MenuItem, error) {
	m.lastCalledSlug = slug

	if m.Err != nil {
		return nil, m.Err
	}

	for _, p := range m.SourceItems {
		if p.Slug == slug {
			item := p
			return &item, nil
		}
	}
	return nil, models.ErrMenuItemNotFound
}

func (m *MockMenuItemRepo) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	m.lastSaved = item
	if m.Err != nil {
		return m.Err
	}
	for _, p := range m.SourceItems {
		if p.Slug == item.Slug {
			return models.Conflict("menu item with slug %q already exists", item.Slug)
		}
	}
	cat, err := m.GetCategory(context.Background(), item.CategoryID)
	if err != nil {
		return models.Validation("category %d does not exist", item.CategoryID)
	}
	item.Category = *cat
	m.SourceItems = append(m.SourceItems, *item)
	return nil
}

func (m *MockMenuItemRepo) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	m.lastSaved = item
	if m.Err != nil {
		return m.Err
	}
	cat, err := m.GetCategory(context.Background(), item.CategoryID)
	if err != nil {
		return models.Validation("category %d does not exist", item.CategoryID)
	}
	for i, p := range m.SourceItems {
		if p.Slug == item.Slug {
			item.Category = *cat
			m.SourceItems[i] = *item
			return nil
		}
	}
	return models.ErrMenuItemNotFound
}

func (m *MockMenuItemRepo) DeleteMenuItem(_ context.Context, slug string) error {
	m.lastCalledSlug = slug
	for i, p := range m.SourceItems {
		if p.Slug == slug {
			m.SourceItems = append(m.SourceItems[:i], m.SourceItems[i+1:]...)
			return nil
		}
	}
	return models.ErrMenuItemNotFound
}

func (m *MockMenuItemRepo) GetCategory(_ context.Context, id uint) (*models.Category, error) {
	for _, c := range m.Categories {
		if c.ID == id {
			cat := c
			return &cat, nil
		}
	}
	return nil, models.ErrCategoryNotFound
}

// --- Mock gate ---

type MockGate struct {
	Err error
}

func (g MockGate) RequireManager(context.Context, string) (*auth.Identity, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	return &auth.Identity{UserID: 1, Username: "manager"}, nil
}

// --- Helpers ---

var (
	mains    = models.Category{ID: 1, Title: "Main Course", Slug: "main-course"}
	desserts = models.Category{ID: 2, Title: "Desserts", Slug: "desserts"}
)

func newTestMenuItem(slug, title string, category models.Category, price string) models.MenuItem {
	return models.MenuItem{
		Slug:       slug,
		Title:      title,
		Price:      decimal.RequireFromString(price),
		CategoryID: category.ID,
		Category:   category,
	}
}

func newMockRepo() *MockMenuItemRepo {
	return &MockMenuItemRepo{
		SourceItems: []models.MenuItem{
			newTestMenuItem("greek-salad", "Greek Salad", mains, "12.50"),
			newTestMenuItem("bruschetta", "Bruschetta", mains, "5.99"),
			newTestMenuItem("lemon-dessert", "Lemon Dessert", desserts, "5.00"),
			newTestMenuItem("grilled-fish", "Grilled Fish", mains, "20.00"),
		},
		Categories: []models.Category{mains, desserts},
	}
}

// --- Tests ---

func TestHandleGet(t *testing.T) {
	testCases := []struct {
		name               string
		url                string
		mockRepoSetup      func() *MockMenuItemRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCalls     func(t *testing.T, repo *MockMenuItemRepo)
	}{
		{
			name:               "Success with default pagination",
			url:                "/api/menu-items",
			mockRepoSetup:      newMockRepo,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 4, resp.Total)
				assert.Equal(t, 1, resp.Page)
				assert.Len(t, resp.MenuItems, 2)
				assert.Equal(t, "lemon-dessert", resp.MenuItems[0].Slug, "cheapest first")
				assert.Equal(t, "5.00", resp.MenuItems[0].Price)
				assert.Equal(t, "desserts", resp.MenuItems[0].Category.Slug)
			},
			checkRepoCalls: func(t *testing.T, repo *MockMenuItemRepo) {
				assert.Equal(t, 0, repo.lastCalledOffset, "Expected default offset 0")
				assert.Equal(t, 2, repo.lastCalledLimit, "Expected configured page size")
				assert.Empty(t, repo.lastCalledFilters.CategorySlug)
				assert.Empty(t, repo.lastCalledFilters.OrderBy)
			},
		},
		{
			name:               "Second page",
			url:                "/api/menu-items?page=2&perpage=3",
			mockRepoSetup:      newMockRepo,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 4, resp.Total)
				assert.Equal(t, 3, resp.PerPage)
				assert.Len(t, resp.MenuItems, 1)
				assert.Equal(t, "grilled-fish", resp.MenuItems[0].Slug)
			},
			checkRepoCalls: func(t *testing.T, repo *MockMenuItemRepo) {
				assert.Equal(t, 3, repo.lastCalledOffset)
				assert.Equal(t, 3, repo.lastCalledLimit)
			},
		},
		{
			name:               "Page beyond data is empty",
			url:                "/api/menu-items?page=40",
			mockRepoSetup:      newMockRepo,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 4, resp.Total)
				assert.Len(t, resp.MenuItems, 0)
			},
		},
		{
			name:               "Pagination with out-of-bounds values",
			url:                "/api/menu-items?page=-10&perpage=200",
			mockRepoSetup:      newMockRepo,
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockMenuItemRepo) {
				assert.Equal(t, 0, repo.lastCalledOffset, "Page should fall back to 1")
				assert.Equal(t, 100, repo.lastCalledLimit, "Per page should be clamped to 100")
			},
		},
		{
			name:               "Filter by category slug",
			url:                "/api/menu-items?category=main-course&perpage=10",
			mockRepoSetup:      newMockRepo,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 3, resp.Total)
				assert.Equal(t, "bruschetta", resp.MenuItems[0].Slug)
			},
			checkRepoCalls: func(t *testing.T, repo *MockMenuItemRepo) {
				assert.Equal(t, "main-course", repo.lastCalledFilters.CategorySlug)
			},
		},
		{
			name:               "Ordering by descending price",
			url:                "/api/menu-items?ordering=-price",
			mockRepoSetup:      newMockRepo,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, "grilled-fish", resp.MenuItems[0].Slug)
				assert.Equal(t, "20.00", resp.MenuItems[0].Price)
			},
			checkRepoCalls: func(t *testing.T, repo *MockMenuItemRepo) {
				assert.Equal(t, "-price", repo.lastCalledFilters.OrderBy)
			},
		},
		{
			name:               "Unknown ordering is ignored",
			url:                "/api/menu-items?ordering=category",
			mockRepoSetup:      newMockRepo,
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockMenuItemRepo) {
				assert.Empty(t, repo.lastCalledFilters.OrderBy)
			},
		},
		{
			name:               "Empty result from repo",
			url:                "/api/menu-items?category=nonexistent",
			mockRepoSetup:      newMockRepo,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, 0, resp.Total)
				assert.Len(t, resp.MenuItems, 0)
			},
		},
		{
			name: "Repository error",
			url:  "/api/menu-items",
			mockRepoSetup: func() *MockMenuItemRepo {
				return &MockMenuItemRepo{Err: errors.New("db down")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "Failed to fetch menu items", errResp["error"])
			},
		},
		{
			name:               "Invalid query param values are ignored",
			url:                "/api/menu-items?page=abc&perpage=xyz",
			mockRepoSetup:      newMockRepo,
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockMenuItemRepo) {
				assert.Equal(t, 0, repo.lastCalledOffset, "Expected default offset for invalid value")
				assert.Equal(t, 2, repo.lastCalledLimit, "Expected default page size for invalid value")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCatalogHandler(mockRepo, mockRepo, MockGate{}, 2)
			req := httptest.NewRequest("GET", tc.url, nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGet(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCalls != nil {
				tc.checkRepoCalls(t, mockRepo)
			}
		})
	}
}

func TestHandleGetByCategory(t *testing.T) {
	testCases := []struct {
		name               string
		id                 string
		expectedStatusCode int
		expectedSlugs      []string
	}{
		{name: "All items of a category", id: "1", expectedStatusCode: http.StatusOK, expectedSlugs: []string{"bruschetta", "greek-salad", "grilled-fish"}},
		{name: "Unknown category", id: "7", expectedStatusCode: http.StatusNotFound},
		{name: "Malformed id", id: "mains", expectedStatusCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := newMockRepo()
			handler := NewCatalogHandler(mockRepo, mockRepo, MockGate{}, 2)
			req := httptest.NewRequest("GET", "/api/categories/"+tc.id+"/menu-items", nil)
			req.SetPathValue("id", tc.id)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetByCategory(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedSlugs == nil {
				return
			}
			var resp []MenuItem
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			slugs := make([]string, len(resp))
			for i, m := range resp {
				slugs[i] = m.Slug
			}
			assert.Equal(t, tc.expectedSlugs, slugs)
			assert.Equal(t, -1, mockRepo.lastCalledLimit, "category listing is unpaginated")
		})
	}
}
