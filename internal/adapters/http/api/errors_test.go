package api

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestError(t *testing.T) {
	Convey("Given API errors", t, func() {
		cause := errors.New("unexpected EOF")

		Convey("When wrapping with a kind", func() {
			err := WrapKind("api.analyze", ErrBadRequest, cause)

			Convey("Then both the kind and cause match", func() {
				So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.analyze: bad request: unexpected EOF")
			})
		})

		Convey("When building a bare kind", func() {
			err := NewKind("api.roster", ErrRateLimited)
			So(errors.Is(err, ErrRateLimited), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.roster: rate limited")

			var apiErr *Error
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Op, ShouldEqual, "api.roster")
		})

		Convey("When wrapping without a kind", func() {
			So(Wrap("api.get_session", nil), ShouldBeNil)
			So(Wrap("api.get_session", cause).Error(), ShouldEqual, "api.get_session: unexpected EOF")
		})
	})
}
