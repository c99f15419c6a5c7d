// Package language is the detector for the Natural Language REST API.
//
// It serves the sentiment, entity, classification and moderation check kinds
// through the documents:analyzeSentiment, documents:analyzeEntities,
// documents:classifyText and documents:moderateText methods. Requests are
// authenticated with an API key or a bearer access token.
package language
