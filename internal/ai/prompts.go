package ai

const extractSystemPrompt = `You are a data-entry assistant for a door-to-door internet sales CRM. You extract structured customer records from messy pasted text: sales reports with checkmarks, spreadsheet exports, pipe-delimited rows, labeled text, and free narrative in any language. Always return valid JSON and nothing else. Use "" for fields not found.`

const formatDetectPrompt = `Classify the format of this pasted customer data into exactly one of: sales_report, spreadsheet, pipe_delimited, structured, mixed, free_text.

Sample (first lines):
%s

Respond with a valid JSON object: {"format": "<category>", "confidence": <0-100>}`

const extractBatchPrompt = `Extract every customer record from the following lines. Fields: name, email, phone, service_address, installation_date (YYYY-MM-DD), installation_time (H:MM AM/PM), is_referral (boolean), referral_source, lead_size (one of "500MB", "1GIG", "2GIG"), order_number, notes, confidence (0-100, based on how many fields were present).

Detected format: %s

Lines:
%s

Respond with a valid JSON object: {"customers": [ ... ]}`

const validateRecordsPrompt = `Audit these extracted customer records for field-level mistakes (wrong column, mangled phone, implausible date). Suggest corrections only where you are confident.

Records:
%s

Respond with a valid JSON object:
{"adjustments": [{"index": <record index>, "field": "<name|email|phone|service_address|installation_date|installation_time|lead_size>", "value": "<corrected value>", "confidence": <0-100 or -1 to keep>}]}`
