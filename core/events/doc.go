// Package events defines the typed pipeline event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - file.*
//   - transcription.*
//   - question.*
//   - answer.*
//   - speech.*
//   - conversation.*
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in stream order.
//   - Progress: advisory update that has no influence on the stored result.
//   - Final: terminal immutable text/state for the current phase.
//   - Saved: an artifact was written to the output directory.
//
// file events
//
//   - FileStarted (file.started): processing of an input recording started.
//   - FileSkipped (file.skipped): the recording produced nothing to answer or
//     could not be processed; includes the reason.
//   - FileCompleted (file.completed): every artifact for the recording was
//     written; includes the stored conversation.
//
// transcription events
//
//   - TranscriptSegment (transcription.segment): finalized, append-only
//     transcript segment.
//   - TranscriptFinal (transcription.final): full transcript of the recording.
//
// question events
//
//   - QuestionsFound (question.found): questions extracted from the transcript.
//   - QuestionStarted (question.started): answer generation for one question
//     started.
//
// answer events
//
//   - AnswerProgress (answer.progress): throttled, flushed piece of the
//     streamed answer.
//   - AnswerFinal (answer.final): assembled answer, or the failure message,
//     for one question.
//   - AnswerDropped (answer.dropped): the model returned nothing for the
//     question, so it is left out of the conversation.
//
// speech events
//
//   - SpeechChunkSaved (speech.chunk_saved): one narration chunk was
//     synthesized to an audio file.
//   - SpeechChunkFailed (speech.chunk_failed): synthesis of one narration
//     chunk failed and the chunk was skipped.
//   - SpeechPlaybackEnded (speech.playback_ended): local playback of an audio
//     file ended.
//
// conversation events
//
//   - ConversationTextSaved (conversation.text_saved): human-readable
//     transcript of the questions and answers was written.
//   - ConversationMetadataSaved (conversation.metadata_saved): structured
//     metadata record was written.
package events
