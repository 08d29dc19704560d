package openai

// System prompts for the two generation calls. Kept verbatim so report
// structure stays stable across releases.

const actionItemsPrompt = `Based on this incident, generate 3-5 SPECIFIC action items.

Rules:
- Each item must start with a verb
- Each item must be concrete and actionable
- Assign an OWNER ROLE (not a person name)
- Assign priority: P0 (critical), P1 (high), P2 (medium)

Return as JSON array with objects containing: action, owner, priority
Do NOT include vague items like "Improve monitoring" or "Prevent future incidents"`

const postmortemPrompt = `Generate a professional incident postmortem in Markdown.

Structure:
# [Incident Title]

## Executive Summary
2-3 sentences, non-technical, suitable for executives.

## Incident Overview
| Field | Value |
|-------|-------|
Brief table with type, severity, duration, detection method.

## Timeline
Formatted timeline with timestamps.

## Root Cause Analysis
Clear explanation of what caused the incident.

## Impact Assessment
Quantified impact on users, business, and services.

## Resolution
Steps taken to resolve the incident.

## Action Items
Table with Action, Owner, Priority columns.

## Lessons Learned
What went well and what could be improved.

Tone: Calm, professional, accountability-focused, zero blame language.
Focus on facts and improvements, not individuals.`
