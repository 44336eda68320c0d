package service

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hongminglow/marketplace-auth/internal/models"
)

func TestAccountLifecycleScenarios(t *testing.T) {
	ctx := context.Background()

	Convey("Given a registered customer", t, func() {
		f := newFixture(t)
		reg := f.register(t, customerRequest("ada@example.com", "+100"))

		Convey("the registration token opens a session", func() {
			session, err := f.svc.ValidateSession(ctx, reg.Token)
			So(err, ShouldBeNil)
			So(session.Profile.Base().ID, ShouldEqual, reg.Profile.Base().ID)
		})

		Convey("when a second verification code is requested", func() {
			_, err := f.svc.SendVerificationOTP(ctx, "customer", "ada@example.com")
			So(err, ShouldBeNil)
			first := f.mailer.lastCode(t)
			_, err = f.svc.SendVerificationOTP(ctx, "customer", "ada@example.com")
			So(err, ShouldBeNil)
			second := f.mailer.lastCode(t)

			Convey("only the latest code verifies", func() {
				if first != second {
					_, err := f.svc.VerifyEmailOTP(ctx, "customer", "ada@example.com", first)
					So(err, ShouldBeError, ErrInvalidOTP)
				}
				_, err := f.svc.VerifyEmailOTP(ctx, "customer", "ada@example.com", second)
				So(err, ShouldBeNil)
				So(f.load(t, models.RoleCustomer, "ada@example.com").IsEmailVerified, ShouldBeTrue)
			})
		})

		Convey("when the password is reset", func() {
			_, err := f.svc.ForgotPassword(ctx, "customer", "ada@example.com")
			So(err, ShouldBeNil)
			code := f.mailer.lastCode(t)
			_, err = f.svc.ResetPassword(ctx, "customer", "ada@example.com", code, "fresh-password")
			So(err, ShouldBeNil)

			Convey("existing tokens remain valid until they expire", func() {
				_, err := f.svc.ValidateSession(ctx, reg.Token)
				So(err, ShouldBeNil)
			})

			Convey("replaying the code fails", func() {
				_, err := f.svc.ResetPassword(ctx, "customer", "ada@example.com", code, "other-password")
				So(err, ShouldBeError, ErrInvalidOTP)
			})
		})

		Convey("when the account is deactivated", func() {
			f.update(t, models.RoleCustomer, "ada@example.com", func(a *models.Account) { a.IsActive = false })

			Convey("its session is rejected", func() {
				_, err := f.svc.ValidateSession(ctx, reg.Token)
				So(err, ShouldBeError, ErrInvalidToken)
			})

			Convey("login fails like an unknown account", func() {
				_, err := f.svc.Login(ctx, "customer", "ada@example.com", testPassword)
				So(err, ShouldBeError, ErrInvalidCredentials)
			})

			Convey("forgot password answers generically without mail", func() {
				sent := f.mailer.count()
				msg, err := f.svc.ForgotPassword(ctx, "customer", "ada@example.com")
				So(err, ShouldBeNil)
				So(msg, ShouldEqual, MsgResetOTPSent)
				So(f.mailer.count(), ShouldEqual, sent)
			})
		})
	})

	Convey("Given a vendor registration that collides on phone", t, func() {
		f := newFixture(t)
		f.register(t, vendorRequest("vee@example.com", "+200", "1234"))
		_, err := f.svc.Register(ctx, vendorRequest("new@example.com", "+200", "5678"))

		Convey("it fails without creating a vendor", func() {
			So(err, ShouldBeError, ErrDuplicateIdentity)
			_, ferr := f.stores.Vendors.FindByEmail(ctx, "new@example.com")
			So(ferr, ShouldNotBeNil)
		})

		Convey("the original vendor PIN still logs in", func() {
			_, lerr := f.svc.LoginWithPIN(ctx, "vendor", "1234")
			So(lerr, ShouldBeNil)
			_, lerr = f.svc.LoginWithPIN(ctx, "vendor", "5678")
			So(lerr, ShouldBeError, ErrInvalidPIN)
		})
	})
}
