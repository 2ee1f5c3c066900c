package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/url-shortener/internal/models"
)

func TestNormalizeURL(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare domain", in: "example.com/page", want: "http://example.com/page"},
		{name: "http", in: "http://example.com", want: "http://example.com"},
		{name: "https", in: "https://example.com/a?b=c", want: "https://example.com/a?b=c"},
		{name: "upper case scheme", in: "HTTPS://example.com", want: "HTTPS://example.com"},
		{name: "other scheme", in: "ftp://example.com", want: "http://ftp://example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeURL(tc.in))
		})
	}
}

func TestRedirector_Resolve(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		finder := new(MockLinkFinder)
		finder.On("GetByCode", mock.Anything, "doesnotexist").Once().Return(nil, ErrNotFound)

		target, err := NewRedirector(finder).Resolve(context.Background(), "doesnotexist")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, target)
		finder.AssertExpectations(t)
	})

	t.Run("unknown error", func(t *testing.T) {
		errUnknown := errors.New("unknown error")
		finder := new(MockLinkFinder)
		finder.On("GetByCode", mock.Anything, "abc1234").Once().Return(nil, errUnknown)

		_, err := NewRedirector(finder).Resolve(context.Background(), "abc1234")

		assert.ErrorIs(t, err, errUnknown)
		finder.AssertExpectations(t)
	})

	t.Run("normalizes target", func(t *testing.T) {
		finder := new(MockLinkFinder)
		finder.
			On("GetByCode", mock.Anything, "abc1234").
			Once().
			Return(&models.Link{ShortCode: "abc1234", OriginalURL: "example.com/page"}, nil)

		target, err := NewRedirector(finder).Resolve(context.Background(), "abc1234")

		assert.NoError(t, err)
		assert.Equal(t, "http://example.com/page", target)
		finder.AssertExpectations(t)
	})

	t.Run("keeps https target", func(t *testing.T) {
		finder := new(MockLinkFinder)
		finder.
			On("GetByCode", mock.Anything, "abc1234").
			Once().
			Return(&models.Link{ShortCode: "abc1234", OriginalURL: "https://example.com"}, nil)

		target, err := NewRedirector(finder).Resolve(context.Background(), "abc1234")

		assert.NoError(t, err)
		assert.Equal(t, "https://example.com", target)
		finder.AssertExpectations(t)
	})
}
