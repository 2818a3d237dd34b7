package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"immersionhub/cmd/cli/authentication"
)

// auth.go stores the access token issued by the account service.
// immersionctl never issues tokens itself.

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored access token",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the --token access token in the OS keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		accessToken := strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
		if accessToken == "" {
			return fmt.Errorf("--token is required")
		}

		creds := &authentication.StoredCredentials{AccessToken: accessToken, APIURL: apiURL}
		claims, err := peekClaims(accessToken)
		if err != nil {
			return fmt.Errorf("token is not a JWT: %w", err)
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			creds.ExpiresAt = exp.Unix()
		}

		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("could not store token: %w", err)
		}

		fmt.Println(color.GreenString("✓ Token stored."))
		if userID, ok := claims["user_id"].(string); ok {
			fmt.Printf("UserID: %s\n", userID)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return err
		}
		fmt.Println(color.GreenString("✓ Logged out."))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored token's user and expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if err != nil {
			return err
		}
		claims, err := peekClaims(creds.AccessToken)
		if err != nil {
			return err
		}

		fmt.Printf("API:    %s\n", creds.APIURL)
		if userID, ok := claims["user_id"].(string); ok {
			fmt.Printf("UserID: %s\n", userID)
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			state := color.GreenString("valid")
			if exp.Before(time.Now()) {
				state = color.RedString("expired")
			}
			fmt.Printf("Expiry: %s (%s)\n", exp.Local().Format("2006-01-02 15:04"), state)
		}
		return nil
	},
}

// peekClaims decodes a token without verifying it. The server verifies.
func peekClaims(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
}
