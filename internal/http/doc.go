// Package httpapp provides the HTTP server for the bloglist service.
//
//	@title						Bloglist API
//	@version					1.0
//	@description				A blog-listing service: register an account, log in for a bearer token, and manage posts.
//	@description
//	@description				## Authentication Flow
//	@description
//	@description				Creating and deleting posts requires a bearer token.
//	@description
//	@description				### Step 1: Register (First Time Only)
//	@description				```bash
//	@description				curl -X POST /accounts -d '{"username":"mluukkai","name":"Matti Luukkainen","password":"salainen"}'
//	@description				```
//	@description
//	@description				### Step 2: Log In
//	@description				```bash
//	@description				curl -X POST /login -d '{"username":"mluukkai","password":"salainen"}'
//	@description				# Returns: {"token": "TOKEN", "username": "...", "name": "..."}
//	@description				```
//	@description
//	@description				### Step 3: Use Token for Writes
//	@description				```bash
//	@description				curl -X POST /posts -H "Authorization: Bearer TOKEN" -d '{"title":"...","url":"..."}'
//	@description				```
//
//	@contact.name				Bloglist
//	@license.name				MIT
//
//	@host						localhost:3003
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from the /login endpoint
//
//	@tag.name					Posts
//	@tag.description			Browse and manage blog posts. Anyone can read; creating requires a token, deleting requires ownership.
//
//	@tag.name					Accounts
//	@tag.description			Account management. Register with a unique username of at least 4 characters.
//
//	@tag.name					Authentication
//	@tag.description			Exchange username and password for a bearer token.
package httpapp
