// Package fixture serves canned detector output from YAML, for offline runs
// and the test suite command.
//
// A fixture file holds a default response and a list of responses selected by
// a case-insensitive substring of the checked text. The first matching
// response wins:
//
//	default:
//	  sentiment: {score: 0.2, magnitude: 0.4}
//	responses:
//	  - match: "you idiot"
//	    moderation:
//	      - {category: Toxic, confidence: 0.92}
//	  - match: "rate limited"
//	    errors:
//	      moderate_text: quota_exhausted
package fixture
