package console

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/kvesta/scanconsole/internal/router"
	"github.com/kvesta/scanconsole/pkg/apiclient"
)

const msgLoginFailed = "Login failed"

// SubmitLogin sends the credentials. On success the token is stored and
// the dashboard is shown; on failure the message lands in the login
// region and the page does not change.
func (c *Console) SubmitLogin(username, password string) {
	tok := c.Router.Current()

	c.spawn(tok, func(ctx context.Context) {
		token, err := c.Backend.Login(ctx, username, password)
		if err != nil {
			c.apply(tok, err, func() {
				c.Screen.Set(LoginMsg, apiclient.UserMessage(err, msgLoginFailed))
			})
			return
		}

		var stored error
		ok := c.apply(tok, nil, func() {
			if stored = c.Store.SetCredential(token); stored != nil {
				c.Screen.Set(LoginMsg, "Cannot save session: "+stored.Error())
				return
			}
			c.Screen.Set(LoginMsg, "")
		})
		if !ok {
			return
		}
		if stored != nil {
			log.Error().Err(stored).Msg("failed to store credential")
			c.setErr(stored)
			return
		}

		next, ok := c.Router.Transition(tok, router.Dashboard)
		if !ok {
			return
		}
		c.notify(next.Page)
		c.loadDashboard(next)
	})
}

// Logout forgets the credential and returns to the login page.
func (c *Console) Logout() error {
	err := c.Store.ClearCredential()
	if err != nil {
		log.Error().Err(err).Msg("failed to clear credential")
	}

	c.Screen.Set(LoginMsg, "")
	c.Router.Activate(router.Login)
	c.setErr(err)
	return err
}
