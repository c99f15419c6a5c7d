// Package modelarmor is the detector for the Model Armor AI-safety filters.
//
// Text is sent to the sanitizeUserPrompt or sanitizeModelResponse method of a
// policy template, selected by the check type. Each filter verdict in the
// response becomes one detection record carrying the filter's match state;
// the responsible-AI filter also reports the confidence of each matched
// subcategory.
package modelarmor
