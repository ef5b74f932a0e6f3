// Package walkthrough carries the static connector setup guides served
// under /connector-setup.
package walkthrough

type Step struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Instructions  []string `json:"instructions"`
	ScreenshotURL string   `json:"screenshot_url"`
}

type Troubleshoot struct {
	Issue    string `json:"issue"`
	Solution string `json:"solution"`
}

type Walkthrough struct {
	Name            string         `json:"name"`
	AuthType        string         `json:"auth_type"`
	Steps           []Step         `json:"steps"`
	Troubleshooting []Troubleshoot `json:"troubleshooting"`
}

// Get returns the walkthrough for a connector name, nil when none exists.
func Get(name string) *Walkthrough {
	for i := range walkthroughs {
		if walkthroughs[i].Name == name {
			return &walkthroughs[i]
		}
	}
	return nil
}

// List maps connector names to their auth types.
func List() map[string]string {
	out := make(map[string]string, len(walkthroughs))
	for _, w := range walkthroughs {
		out[w.Name] = w.AuthType
	}
	return out
}

var walkthroughs = []Walkthrough{gmail, googleCalendar, webSearch}

var gmail = Walkthrough{
	Name:     "Gmail",
	AuthType: "oauth2",
	Steps: []Step{
		{
			Title:       "Create a Google Cloud Project",
			Description: "First, you'll need to create a project in Google Cloud Console to manage your API access.",
			Instructions: []string{
				"1. Navigate to the [Google Cloud Console](https://console.cloud.google.com/)",
				"2. Click on the project dropdown at the top of the page",
				"3. Select 'NEW PROJECT'",
				"4. Enter a descriptive name (e.g., 'AgentBase Gmail Integration')",
				"5. Click 'CREATE' and wait for the project to be created",
			},
			ScreenshotURL: "/setup/gmail/create_project.png",
		},
		{
			Title:       "Enable the Gmail API",
			Description: "Enable the Gmail API for your project to allow secure access to Gmail data.",
			Instructions: []string{
				"1. In your Google Cloud project, navigate to [API Library](https://console.cloud.google.com/apis/library)",
				"2. In the search bar, type 'Gmail API'",
				"3. Select 'Gmail API' from the search results",
				"4. Click the 'ENABLE' button",
				"5. Wait for confirmation that the API has been enabled",
			},
			ScreenshotURL: "/setup/gmail/enable_api.png",
		},
		{
			Title:       "Configure OAuth Consent Screen",
			Description: "Set up the consent screen that users will see when granting access to their Gmail account.",
			Instructions: []string{
				"1. Navigate to [OAuth consent screen](https://console.cloud.google.com/apis/credentials/consent)",
				"2. For User Type, select 'External' (unless you have a Google Workspace organization)",
				"3. Click 'CREATE'",
				"4. Complete the required app information:",
				"   • App name: Enter 'AgentBase'",
				"   • User support email: Enter your email address",
				"   • Developer contact information: Enter your email address",
				"5. Click 'SAVE AND CONTINUE' to proceed",
			},
			ScreenshotURL: "/setup/gmail/consent_screen.png",
		},
		{
			Title:       "Add Required API Scopes",
			Description: "Specify the Gmail API permissions your application will request from users.",
			Instructions: []string{
				"1. On the 'Scopes' step, click 'ADD OR REMOVE SCOPES'",
				"2. Add the following scopes by finding them in the list or pasting the URLs:",
				"   • https://www.googleapis.com/auth/gmail.readonly",
				"   • https://www.googleapis.com/auth/gmail.send",
				"   • https://www.googleapis.com/auth/gmail.compose",
				"3. Select all required scopes and click 'UPDATE'",
				"4. Click 'SAVE AND CONTINUE' to proceed to the next step",
			},
			ScreenshotURL: "/setup/gmail/add_scopes.png",
		},
		{
			Title:       "Create OAuth Client ID",
			Description: "Create OAuth credentials that will allow your application to authenticate with Gmail securely.",
			Instructions: []string{
				"1. Navigate to [Credentials](https://console.cloud.google.com/apis/credentials)",
				"2. Click 'CREATE CREDENTIALS' at the top of the page",
				"3. Select 'OAuth client ID' from the dropdown menu",
				"4. For Application type, select 'Web application'",
				"5. Enter a name for your OAuth client (e.g., 'AgentBase Gmail Integration')",
				"6. Under 'Authorized redirect URIs', add: 'http://localhost:8000/api/v1/connectors/oauth2/callback'",
				"7. Click 'CREATE' to generate your credentials",
			},
			ScreenshotURL: "/setup/gmail/create_oauth.png",
		},
		{
			Title:       "Save Your OAuth Credentials",
			Description: "Copy your OAuth credentials to connect AgentBase with your Gmail account.",
			Instructions: []string{
				"1. A popup window will display your newly created OAuth client credentials",
				"2. Copy the Client ID (a long string ending with .apps.googleusercontent.com)",
				"3. Copy the Client Secret (a shorter string)",
				"4. Store these values securely - you'll need them in the next step",
				"5. Click 'OK' to close the popup window",
			},
			ScreenshotURL: "/setup/gmail/credentials.png",
		},
		{
			Title:       "Connect Your Gmail Account",
			Description: "Enter your OAuth credentials to complete the Gmail connection setup.",
			Instructions: []string{
				"1. Return to AgentBase and paste your Client ID in the 'Client ID' field",
				"2. Paste your Client Secret in the 'Client Secret' field",
				"3. Click 'Connect' to proceed with the OAuth authentication flow",
				"4. You'll be redirected to Google to authorize access to your Gmail account",
				"5. Select the Google account you want to connect and grant the requested permissions",
			},
			ScreenshotURL: "/setup/gmail/connect_gmail.png",
		},
	},
	Troubleshooting: []Troubleshoot{
		{
			Issue:    "I'm getting a 'redirect_uri_mismatch' error",
			Solution: "Ensure your redirect URI exactly matches 'http://localhost:8000/api/v1/connectors/oauth2/callback' in your Google Cloud OAuth client settings. Check for typos, extra spaces, or missing characters.",
		},
		{
			Issue:    "I see a 'This app isn't verified' warning",
			Solution: "This warning is normal for development apps. Click 'Advanced' and then 'Go to [Your App Name] (unsafe)' to proceed with the authentication process.",
		},
		{
			Issue:    "I can't find my client ID and secret after closing the popup",
			Solution: "You can retrieve your client ID and secret by going to the Credentials page in Google Cloud Console, finding your OAuth client in the list, and clicking the edit icon (pencil).",
		},
		{
			Issue:    "I'm getting an authorization error during OAuth flow",
			Solution: "Make sure you've added all the required Gmail API scopes correctly. If the issue persists, try creating a new OAuth client ID with the correct settings.",
		},
	},
}

var googleCalendar = Walkthrough{
	Name:     "Google Calendar",
	AuthType: "oauth2",
	Steps: []Step{
		{
			Title:       "Create a Google Cloud Project",
			Description: "First, you need to create a project in Google Cloud Console.",
			Instructions: []string{
				"1. Go to the [Google Cloud Console](https://console.cloud.google.com/)",
				"2. Click on the project dropdown at the top of the page",
				"3. Click 'NEW PROJECT'",
				"4. Enter a name for your project (e.g., 'AgentBase Calendar')",
				"5. Click 'CREATE'",
			},
			ScreenshotURL: "/setup/calendar/create_project.png",
		},
		{
			Title:       "Enable the Google Calendar API",
			Description: "Enable the Google Calendar API for your project to allow access to calendar data.",
			Instructions: []string{
				"1. In your Google Cloud project, go to [API Library](https://console.cloud.google.com/apis/library)",
				"2. Search for 'Google Calendar API'",
				"3. Click on 'Google Calendar API' in the results",
				"4. Click 'ENABLE'",
				"5. Wait for the API to be enabled",
			},
			ScreenshotURL: "/setup/calendar/enable_api.png",
		},
		{
			Title:       "Configure OAuth Consent Screen",
			Description: "Set up the consent screen that users will see when granting access to their calendar.",
			Instructions: []string{
				"1. Go to [OAuth consent screen](https://console.cloud.google.com/apis/credentials/consent)",
				"2. Select 'External' as the user type (unless you have a Google Workspace organization)",
				"3. Click 'CREATE'",
				"4. Enter your app information:",
				"   - App name: 'AgentBase'",
				"   - User support email: Your email address",
				"   - Developer contact information: Your email address",
				"5. Click 'SAVE AND CONTINUE'",
			},
			ScreenshotURL: "/setup/calendar/consent_screen.png",
		},
		{
			Title:       "Add API Scopes",
			Description: "Add the required Calendar API scopes that your application needs.",
			Instructions: []string{
				"1. On the 'Scopes' step, click 'ADD OR REMOVE SCOPES'",
				"2. Add the following scopes:",
				"   - https://www.googleapis.com/auth/calendar.readonly",
				"   - https://www.googleapis.com/auth/calendar.events",
				"3. Click 'UPDATE'",
				"4. Click 'SAVE AND CONTINUE'",
			},
			ScreenshotURL: "/setup/calendar/add_scopes.png",
		},
		{
			Title:       "Create OAuth Client ID",
			Description: "Create OAuth credentials for your application to authenticate with Google Calendar.",
			Instructions: []string{
				"1. Go to [Credentials](https://console.cloud.google.com/apis/credentials)",
				"2. Click 'CREATE CREDENTIALS' and select 'OAuth client ID'",
				"3. For Application type, select 'Web application'",
				"4. Enter a name for your OAuth client, e.g., 'AgentBase Calendar Client'",
				"5. Under 'Authorized redirect URIs', add: 'http://localhost:8000/api/v1/connectors/oauth2/callback'",
				"6. Click 'CREATE'",
			},
			ScreenshotURL: "/setup/calendar/create_oauth.png",
		},
		{
			Title:       "Get Your OAuth Credentials",
			Description: "Get the client ID and client secret for your application.",
			Instructions: []string{
				"1. A popup will appear with your OAuth client ID and client secret",
				"2. Copy your client ID and client secret",
				"3. Click 'OK' to close the popup",
				"4. Paste these credentials into the AgentBase connector setup form",
			},
			ScreenshotURL: "/setup/calendar/credentials.png",
		},
	},
	Troubleshooting: []Troubleshoot{
		{
			Issue:    "I'm getting a 'redirect_uri_mismatch' error",
			Solution: "Make sure your redirect URI exactly matches 'http://localhost:8000/api/v1/connectors/oauth2/callback'. Check for typos or extra spaces.",
		},
		{
			Issue:    "I'm getting a 'This app isn't verified' warning",
			Solution: "This is normal for development apps. Click 'Advanced' and then 'Go to [Your App Name] (unsafe)' to proceed.",
		},
		{
			Issue:    "I can't access my Calendar after setup",
			Solution: "Make sure you've added the correct scopes. You may need to disconnect and reconnect the Calendar connector with the proper permissions.",
		},
	},
}

var webSearch = Walkthrough{
	Name:     "Web Search",
	AuthType: "api_key",
	Steps: []Step{
		{
			Title:       "Choose a Search Engine",
			Description: "Decide which search engine provider you want to use with AgentBase.",
			Instructions: []string{
				"1. AgentBase supports multiple search engines: Google and Bing",
				"2. Each search engine requires a different API key setup process",
				"3. Choose the provider that best suits your needs",
				"4. Follow the instructions for your chosen provider in the next steps",
			},
			ScreenshotURL: "/setup/web_search/search_options.png",
		},
		{
			Title:       "Google Search Setup (Option 1)",
			Description: "Set up a Google Programmable Search Engine and get your API key.",
			Instructions: []string{
				"1. Go to the [Google Programmable Search Engine](https://programmablesearchengine.google.com/)",
				"2. Click 'Get Started' or 'Create a Programmable Search Engine'",
				"3. Enter a name for your search engine",
				"4. Choose 'Search the entire web' or specific sites to search",
				"5. Click 'Create'",
				"6. On the next page, click 'Control Panel'",
				"7. Copy your 'Search engine ID' (cx value) - you'll need this later",
			},
			ScreenshotURL: "/setup/web_search/google_cse.png",
		},
		{
			Title:       "Get Google API Key",
			Description: "Obtain a Google API Key to use with your Programmable Search Engine.",
			Instructions: []string{
				"1. Go to the [Google Cloud Console](https://console.cloud.google.com/)",
				"2. Create a new project if you don't have one already",
				"3. Navigate to 'APIs & Services' > 'Library'",
				"4. Search for 'Custom Search API' and enable it",
				"5. Go to 'APIs & Services' > 'Credentials'",
				"6. Click 'Create Credentials' > 'API Key'",
				"7. Copy your new API key",
			},
			ScreenshotURL: "/setup/web_search/google_api_key.png",
		},
		{
			Title:       "Bing Search Setup (Option 2)",
			Description: "Get a Bing Search API key from Microsoft Azure.",
			Instructions: []string{
				"1. Go to the [Microsoft Azure Portal](https://portal.azure.com/)",
				"2. Sign in or create a new account if needed",
				"3. Click 'Create a resource'",
				"4. Search for 'Bing Search' and select 'Bing Search v7'",
				"5. Click 'Create'",
				"6. Fill in the required details:",
				"   - Subscription: Choose your subscription",
				"   - Resource group: Create new or use existing",
				"   - Name: Enter a name for your resource",
				"   - Pricing tier: Select an appropriate tier (F0 is free)",
				"   - Legal terms: Review and agree to the terms",
				"7. Click 'Review + create', then 'Create'",
			},
			ScreenshotURL: "/setup/web_search/bing_setup.png",
		},
		{
			Title:       "Get Bing API Key",
			Description: "Retrieve your Bing API key from the Azure portal.",
			Instructions: []string{
				"1. Once your Bing Search resource is deployed, click 'Go to resource'",
				"2. In the left menu, under 'Resource Management', select 'Keys and Endpoint'",
				"3. Copy either 'Key 1' or 'Key 2' - both work the same",
				"4. Also note the endpoint URL provided (you may need this)",
			},
			ScreenshotURL: "/setup/web_search/bing_api_key.png",
		},
		{
			Title:       "Configure in AgentBase",
			Description: "Add your search engine API key to AgentBase.",
			Instructions: []string{
				"1. Return to AgentBase and select 'Web Search' connector",
				"2. Choose your search provider (Google or Bing)",
				"3. Enter your API key",
				"4. If using Google, also enter your Search Engine ID (cx)",
				"5. Click 'Connect' to save your configuration",
			},
			ScreenshotURL: "/setup/web_search/agentbase_config.png",
		},
	},
	Troubleshooting: []Troubleshoot{
		{
			Issue:    "Invalid API key error",
			Solution: "Double-check that you've copied the API key correctly. Make sure there are no extra spaces or characters.",
		},
		{
			Issue:    "Quota exceeded error",
			Solution: "Free tier APIs have usage limits. Consider upgrading to a paid tier, or try again after the quota resets (usually the next day).",
		},
		{
			Issue:    "Search not returning results",
			Solution: "For Google, verify your search engine ID (cx) is correct. For both providers, check if your search query is within the terms of service guidelines.",
		},
		{
			Issue:    "API key not working after creation",
			Solution: "Some APIs take a few minutes to activate. Wait 5-10 minutes after creating your key before trying again.",
		},
	},
}
