package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/url-shortener/internal/database"
	"github.com/vadimbarashkov/url-shortener/internal/database/memory"
	"github.com/vadimbarashkov/url-shortener/internal/models"
	"github.com/vadimbarashkov/url-shortener/internal/shortcode"
)

func ptr[T any](v T) *T {
	return &v
}

type LinkServiceTestSuite struct {
	suite.Suite
	errUnknown error
	repoMock   *MockLinkRepository
	genMock    *MockCodeGenerator
	svc        *LinkService
}

func (suite *LinkServiceTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *LinkServiceTestSuite) SetupSubTest() {
	suite.repoMock = new(MockLinkRepository)
	suite.genMock = new(MockCodeGenerator)
	suite.svc = NewLinkService(suite.repoMock, suite.genMock, nil)
}

func (suite *LinkServiceTestSuite) TearDownSubTest() {
	suite.repoMock.AssertExpectations(suite.T())
	suite.genMock.AssertExpectations(suite.T())
}

func (suite *LinkServiceTestSuite) TestCreateLink() {
	suite.Run("empty url", func() {
		link, err := suite.svc.CreateLink(context.Background(), "  ", "", "")

		suite.ErrorIs(err, ErrValidation)
		suite.Nil(link)
	})

	suite.Run("invalid preferred code", func() {
		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "no-dash", "")

		suite.ErrorIs(err, ErrValidation)
		suite.Nil(link)
	})

	suite.Run("preferred code taken", func() {
		suite.repoMock.
			On("GetByShortCode", mock.Anything, "mine").
			Once().
			Return(&models.Link{ID: 1, ShortCode: "mine"}, nil)

		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "mine", "")

		suite.ErrorIs(err, ErrAlreadyExists)
		suite.Nil(link)
		suite.repoMock.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
		suite.genMock.AssertNotCalled(suite.T(), "Generate")
	})

	suite.Run("preferred code lost race", func() {
		suite.repoMock.
			On("GetByShortCode", mock.Anything, "mine").
			Once().
			Return(nil, nil)
		suite.repoMock.
			On("Create", mock.Anything, models.Link{ShortCode: "mine", OriginalURL: "https://example.com"}).
			Once().
			Return(nil, fmt.Errorf("insert: %w", database.ErrShortCodeExists))

		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "mine", "")

		suite.ErrorIs(err, ErrAlreadyExists)
		suite.Nil(link)
	})

	suite.Run("preferred code", func() {
		suite.repoMock.
			On("GetByShortCode", mock.Anything, "mine").
			Once().
			Return(nil, nil)
		suite.repoMock.
			On("Create", mock.Anything, models.Link{ShortCode: "mine", OriginalURL: "https://example.com", OwnerID: "user-1"}).
			Once().
			Return(&models.Link{ID: 5, ShortCode: "mine", OriginalURL: "https://example.com", OwnerID: "user-1"}, nil)

		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "mine", "user-1")

		suite.NoError(err)
		suite.Equal(int64(5), link.ID)
		suite.Equal("mine", link.ShortCode)
		suite.genMock.AssertNotCalled(suite.T(), "Generate")
	})

	suite.Run("generator error", func() {
		suite.genMock.
			On("Generate").
			Once().
			Return("", suite.errUnknown)

		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "", "")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("lookup error", func() {
		suite.genMock.On("Generate").Once().Return("abc1234", nil)
		suite.repoMock.
			On("GetByShortCode", mock.Anything, "abc1234").
			Once().
			Return(nil, suite.errUnknown)

		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "", "")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("create error", func() {
		suite.genMock.On("Generate").Once().Return("abc1234", nil)
		suite.repoMock.On("GetByShortCode", mock.Anything, "abc1234").Once().Return(nil, nil)
		suite.repoMock.
			On("Create", mock.Anything, mock.Anything).
			Once().
			Return(nil, suite.errUnknown)

		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "", "")

		suite.ErrorIs(err, suite.errUnknown)
		suite.NotErrorIs(err, ErrGenerationExhausted)
		suite.Nil(link)
	})

	suite.Run("retries after collision", func() {
		suite.genMock.On("Generate").Once().Return("taken01", nil)
		suite.genMock.On("Generate").Once().Return("free001", nil)
		suite.repoMock.
			On("GetByShortCode", mock.Anything, "taken01").
			Once().
			Return(&models.Link{ID: 1, ShortCode: "taken01"}, nil)
		suite.repoMock.On("GetByShortCode", mock.Anything, "free001").Once().Return(nil, nil)
		suite.repoMock.
			On("Create", mock.Anything, models.Link{ShortCode: "free001", OriginalURL: "https://example.com"}).
			Once().
			Return(&models.Link{ID: 2, ShortCode: "free001", OriginalURL: "https://example.com"}, nil)

		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "", "")

		suite.NoError(err)
		suite.Equal("free001", link.ShortCode)
	})

	suite.Run("retries after store conflict", func() {
		suite.genMock.On("Generate").Once().Return("raced01", nil)
		suite.genMock.On("Generate").Once().Return("free001", nil)
		suite.repoMock.On("GetByShortCode", mock.Anything, "raced01").Once().Return(nil, nil)
		suite.repoMock.
			On("Create", mock.Anything, models.Link{ShortCode: "raced01", OriginalURL: "https://example.com"}).
			Once().
			Return(nil, fmt.Errorf("insert: %w", database.ErrShortCodeExists))
		suite.repoMock.On("GetByShortCode", mock.Anything, "free001").Once().Return(nil, nil)
		suite.repoMock.
			On("Create", mock.Anything, models.Link{ShortCode: "free001", OriginalURL: "https://example.com"}).
			Once().
			Return(&models.Link{ID: 2, ShortCode: "free001", OriginalURL: "https://example.com"}, nil)

		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "", "")

		suite.NoError(err)
		suite.Equal("free001", link.ShortCode)
	})

	suite.Run("generation exhausted after exactly ten attempts", func() {
		suite.genMock.
			On("Generate").
			Times(MaxGenerationAttempts).
			Return("taken01", nil)
		suite.repoMock.
			On("GetByShortCode", mock.Anything, "taken01").
			Times(MaxGenerationAttempts).
			Return(&models.Link{ID: 1, ShortCode: "taken01"}, nil)

		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "", "")

		suite.ErrorIs(err, ErrGenerationExhausted)
		suite.Nil(link)
		suite.genMock.AssertNumberOfCalls(suite.T(), "Generate", 10)
		suite.repoMock.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	})

	suite.Run("store conflicts count towards the bound", func() {
		suite.genMock.
			On("Generate").
			Times(MaxGenerationAttempts).
			Return("raced01", nil)
		suite.repoMock.
			On("GetByShortCode", mock.Anything, "raced01").
			Times(MaxGenerationAttempts).
			Return(nil, nil)
		suite.repoMock.
			On("Create", mock.Anything, mock.Anything).
			Times(MaxGenerationAttempts).
			Return(nil, database.ErrShortCodeExists)

		link, err := suite.svc.CreateLink(context.Background(), "https://example.com", "", "")

		suite.ErrorIs(err, ErrGenerationExhausted)
		suite.Nil(link)
		suite.genMock.AssertNumberOfCalls(suite.T(), "Generate", 10)
	})
}

func (suite *LinkServiceTestSuite) TestGetLink() {
	suite.Run("not found", func() {
		suite.repoMock.On("GetByID", mock.Anything, int64(9)).Once().Return(nil, nil)

		link, err := suite.svc.GetLink(context.Background(), 9)

		suite.ErrorIs(err, ErrNotFound)
		suite.Nil(link)
	})

	suite.Run("unknown error", func() {
		suite.repoMock.On("GetByID", mock.Anything, int64(1)).Once().Return(nil, suite.errUnknown)

		link, err := suite.svc.GetLink(context.Background(), 1)

		suite.ErrorIs(err, suite.errUnknown)
		suite.NotErrorIs(err, ErrNotFound)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("GetByID", mock.Anything, int64(1)).
			Once().
			Return(&models.Link{ID: 1, ShortCode: "abc1234"}, nil)

		link, err := suite.svc.GetLink(context.Background(), 1)

		suite.NoError(err)
		suite.Equal("abc1234", link.ShortCode)
	})
}

func (suite *LinkServiceTestSuite) TestGetByCode() {
	suite.Run("not found", func() {
		suite.repoMock.On("GetByShortCode", mock.Anything, "doesnotexist").Once().Return(nil, nil)

		link, err := suite.svc.GetByCode(context.Background(), "doesnotexist")

		suite.ErrorIs(err, ErrNotFound)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("GetByShortCode", mock.Anything, "abc1234").
			Once().
			Return(&models.Link{ID: 1, ShortCode: "abc1234"}, nil)

		link, err := suite.svc.GetByCode(context.Background(), "abc1234")

		suite.NoError(err)
		suite.Equal(int64(1), link.ID)
	})
}

func (suite *LinkServiceTestSuite) TestListLinks() {
	suite.Run("unknown error", func() {
		suite.repoMock.On("List", mock.Anything, "").Once().Return(nil, suite.errUnknown)

		links, err := suite.svc.ListLinks(context.Background(), "")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(links)
	})

	suite.Run("owner filter", func() {
		suite.repoMock.
			On("List", mock.Anything, "user-1").
			Once().
			Return([]models.Link{{ID: 1, OwnerID: "user-1"}}, nil)

		links, err := suite.svc.ListLinks(context.Background(), "user-1")

		suite.NoError(err)
		suite.Len(links, 1)
	})
}

func (suite *LinkServiceTestSuite) TestUpdateLink() {
	suite.Run("empty url", func() {
		link, err := suite.svc.UpdateLink(context.Background(), 1, models.LinkUpdate{OriginalURL: ptr("")})

		suite.ErrorIs(err, ErrValidation)
		suite.Nil(link)
	})

	suite.Run("invalid code", func() {
		link, err := suite.svc.UpdateLink(context.Background(), 1, models.LinkUpdate{ShortCode: ptr("a b")})

		suite.ErrorIs(err, ErrValidation)
		suite.Nil(link)
	})

	suite.Run("code held by another link", func() {
		suite.repoMock.
			On("GetByShortCode", mock.Anything, "bbbbbbb").
			Once().
			Return(&models.Link{ID: 2, ShortCode: "bbbbbbb"}, nil)

		link, err := suite.svc.UpdateLink(context.Background(), 1, models.LinkUpdate{ShortCode: ptr("bbbbbbb")})

		suite.ErrorIs(err, ErrAlreadyExists)
		suite.Nil(link)
		suite.repoMock.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	suite.Run("code held by the same link", func() {
		upd := models.LinkUpdate{ShortCode: ptr("aaaaaaa")}

		suite.repoMock.
			On("GetByShortCode", mock.Anything, "aaaaaaa").
			Once().
			Return(&models.Link{ID: 1, ShortCode: "aaaaaaa"}, nil)
		suite.repoMock.
			On("Update", mock.Anything, int64(1), upd).
			Once().
			Return(&models.Link{ID: 1, ShortCode: "aaaaaaa"}, nil)

		link, err := suite.svc.UpdateLink(context.Background(), 1, upd)

		suite.NoError(err)
		suite.Equal("aaaaaaa", link.ShortCode)
	})

	suite.Run("store conflict", func() {
		upd := models.LinkUpdate{ShortCode: ptr("ccccccc")}

		suite.repoMock.On("GetByShortCode", mock.Anything, "ccccccc").Once().Return(nil, nil)
		suite.repoMock.
			On("Update", mock.Anything, int64(1), upd).
			Once().
			Return(nil, database.ErrShortCodeExists)

		link, err := suite.svc.UpdateLink(context.Background(), 1, upd)

		suite.ErrorIs(err, ErrAlreadyExists)
		suite.Nil(link)
	})

	suite.Run("link not found", func() {
		upd := models.LinkUpdate{OriginalURL: ptr("https://new.com")}

		suite.repoMock.On("Update", mock.Anything, int64(9), upd).Once().Return(nil, nil)

		link, err := suite.svc.UpdateLink(context.Background(), 9, upd)

		suite.ErrorIs(err, ErrNotFound)
		suite.Nil(link)
	})

	suite.Run("unknown error", func() {
		upd := models.LinkUpdate{OriginalURL: ptr("https://new.com")}

		suite.repoMock.On("Update", mock.Anything, int64(1), upd).Once().Return(nil, suite.errUnknown)

		link, err := suite.svc.UpdateLink(context.Background(), 1, upd)

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("url only", func() {
		upd := models.LinkUpdate{OriginalURL: ptr("https://new.com")}

		suite.repoMock.
			On("Update", mock.Anything, int64(1), upd).
			Once().
			Return(&models.Link{ID: 1, ShortCode: "aaaaaaa", OriginalURL: "https://new.com"}, nil)

		link, err := suite.svc.UpdateLink(context.Background(), 1, upd)

		suite.NoError(err)
		suite.Equal("https://new.com", link.OriginalURL)
	})
}

func (suite *LinkServiceTestSuite) TestDeleteLink() {
	suite.Run("unknown error", func() {
		suite.repoMock.On("Delete", mock.Anything, int64(1)).Once().Return(suite.errUnknown)

		err := suite.svc.DeleteLink(context.Background(), 1)

		suite.ErrorIs(err, suite.errUnknown)
	})

	suite.Run("success", func() {
		suite.repoMock.On("Delete", mock.Anything, int64(1)).Once().Return(nil)

		err := suite.svc.DeleteLink(context.Background(), 1)

		suite.NoError(err)
	})
}

func TestLinkServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LinkServiceTestSuite))
}

func TestLinkService_Uniqueness(t *testing.T) {
	repo := memory.NewLinkRepository()
	svc := NewLinkService(repo, shortcode.NewGenerator(shortcode.DefaultLength), nil)

	const n = 500

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = make(map[string]struct{}, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			link, err := svc.CreateLink(context.Background(), fmt.Sprintf("https://example.com/%d", i), "", "")
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			codes[link.ShortCode] = struct{}{}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Len(t, codes, n)
}

func TestLinkService_PreferredCodeConflictCreatesNothing(t *testing.T) {
	repo := memory.NewLinkRepository()
	svc := NewLinkService(repo, shortcode.NewGenerator(shortcode.DefaultLength), nil)

	_, err := svc.CreateLink(context.Background(), "https://a.com", "mine", "")
	require.NoError(t, err)

	link, err := svc.CreateLink(context.Background(), "https://b.com", "mine", "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Nil(t, link)

	links, err := svc.ListLinks(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, links, 1)
	assert.Equal(t, "https://a.com", links[0].OriginalURL)
}

func TestLinkService_UpdateCodeExclusion(t *testing.T) {
	repo := memory.NewLinkRepository()
	svc := NewLinkService(repo, shortcode.NewGenerator(shortcode.DefaultLength), nil)

	a, err := svc.CreateLink(context.Background(), "https://a.com", "", "")
	require.NoError(t, err)
	b, err := svc.CreateLink(context.Background(), "https://b.com", "", "")
	require.NoError(t, err)

	same, err := svc.UpdateLink(context.Background(), a.ID, models.LinkUpdate{ShortCode: ptr(a.ShortCode)})
	assert.NoError(t, err)
	assert.Equal(t, a.ShortCode, same.ShortCode)

	_, err = svc.UpdateLink(context.Background(), a.ID, models.LinkUpdate{ShortCode: ptr(b.ShortCode)})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}
