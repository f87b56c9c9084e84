package auth

import (
	"fmt"
	"strings"
)

// ShowCaptureGuide explains the interactive session capture
func ShowCaptureGuide(portalURL, sessionPath string) {
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println("SESSION CAPTURE")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println()
	fmt.Println("A browser window is opening on:")
	fmt.Printf("   %s\n", portalURL)
	fmt.Println()
	fmt.Println("1. Log in through the SSO gateway as you normally would.")
	fmt.Println("2. Wait until the portal home page is fully displayed.")
	fmt.Println("3. Come back here and press ENTER.")
	fmt.Println()
	fmt.Println("The session will be saved to:")
	fmt.Printf("   %s\n", sessionPath)
	fmt.Println()
	fmt.Println("Tip: on a headless host, copy the file content into AUTH_STATE_JSON")
	fmt.Println("instead; it is written to disk on first start if no session exists.")
	fmt.Println(strings.Repeat("=", 72))
}
